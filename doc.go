// Package photopdf converts ordered photo collections to PDF and renders PDF
// pages back to images.
//
// # Quick Start
//
// Probe the document writer once, build an engine, and compose a job:
//
//	engine := photopdf.NewEngine(photopdf.ProbeCapabilities())
//
//	res, err := engine.Compose(ctx, photopdf.Job{
//	    Images:    []string{"a.jpg", "b.png"},
//	    Sizing:    photopdf.AutoDPI{Fallback: 300},
//	    Embedding: photopdf.HighQualityJPEG{Quality: 95},
//	    Output:    photopdf.OutputSingle,
//	    Target:    "album.pdf",
//	}, nil)
//	if err != nil {
//	    log.Fatal(err) // the job could not start
//	}
//	fmt.Println(res.Status, res.Succeeded(), res.Failed())
//
// # Composition Pipeline
//
// Each image goes through, strictly in order:
//
//  1. Loading (decode, declared DPI, EXIF orientation)
//  2. Orientation normalization (Normalize)
//  3. Page geometry resolution (Resolve)
//  4. Embedding (Select, then Procedure.Apply)
//  5. Page append, or a one-page document in per-image mode
//
// A failing image is recorded in Result.Items and the batch continues. Only a
// batch with zero successes fails. Outputs are written through a temporary
// file and renamed, so a file at the target always means success.
//
// # Sizing and Embedding
//
// SizingPolicy and EmbeddingMode are closed sets of types. DPI policies size
// the page from pixels and resolution; fixed policies use A4 or Letter and fit
// the image inside the margins. Embedding trades fidelity for size; when the
// writer cannot insert JPEG streams directly the job still completes and
// Result.Degraded is set.
//
// # Rasterization
//
// Engine.Rasterize renders each page of each PDF with MuPDF and writes
// <stem>_page_<NNN>.png (or .jpg) into the output directory.
//
// # Background Jobs
//
// Worker runs one job at a time off the caller's goroutine. Cancellation is
// cooperative and observed between images or pages.
package photopdf
