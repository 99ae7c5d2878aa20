package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/alnah/photopdf/internal/yamlutil"
)

// runConfigCmd prints the effective configuration (file plus PHOTOPDF_*
// overrides) as YAML, in the same shape LoadConfig accepts.
func runConfigCmd(args []string, env *Environment) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	var configPath string
	fs.StringVarP(&configPath, "config", "c", "", "config file name or path")
	fs.Usage = func() { printConfigUsage(os.Stderr) }
	if err := fs.Parse(args); err != nil {
		return parseError(err)
	}

	cfg, err := loadCommandConfig(configPath, env)
	if err != nil {
		return err
	}

	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(out)
	return err
}
