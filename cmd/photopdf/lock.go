package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/alnah/photopdf"
	"github.com/alnah/photopdf/internal/hints"
)

// ErrTargetLocked is returned when another process is writing the same target.
var ErrTargetLocked = errors.New("output target is locked")

// lockFileName is created inside directory targets.
const lockFileName = ".photopdf.lock"

// lockPath returns the lock file guarding target: <file>.lock for a document,
// <dir>/.photopdf.lock for a directory.
func lockPath(target string, isDir bool) string {
	if isDir {
		return filepath.Join(target, lockFileName)
	}
	return target + ".lock"
}

// lockTarget takes a non-blocking exclusive lock on target, creating the
// directory that will hold the lock file. The returned release function
// unlocks and removes the lock file.
func lockTarget(target string, isDir bool) (release func(), err error) {
	path := lockPath(target, isDir)
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v%s", photopdf.ErrIO, filepath.Dir(path), err, hints.ForOutputDirectory())
	}

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: locking %s: %v%s", photopdf.ErrIO, path, err, hints.ForOutputDirectory())
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s%s", ErrTargetLocked, target, hints.ForLocked(target))
	}

	return func() {
		_ = lock.Unlock()
		_ = os.Remove(path)
	}, nil
}
