// Package pkg provides the core libraries for streettype.
//
// # Overview
//
// Streettype sets text in letters photographed on city streets. Every letter
// and digit of the input is replaced by one of up to five photographs of that
// character taken in the chosen city; everything else is drawn as plain text.
//
// The pkg directory is organized as:
//
//  1. [alphabet] - Asset paths, sources (local tree, HTTP) and the resolver
//     that probes variants and caches decoded images
//  2. [letters] - Per-character classification and random variant choice
//  3. [canvas] - Left-to-right layout with wrapping, drawing and PNG export
//  4. [pipeline] - Orchestration (select → render) with artifact caching
//  5. [cache], [gallery] - Probe/artifact cache backends and shared renders
//  6. [errors], [observability], [fonts], [buildinfo] - Supporting packages
//
// # Architecture
//
//	text ("Hi!")
//	     ↓
//	[letters] Selector: Letter(H, .../H/sans-upper/03.jpg) Placeholder(i) Special(!)
//	     ↓                    ↑
//	     ↓          [alphabet] Resolver ← Source (fs or http) + probe cache
//	     ↓
//	[canvas] Renderer: layout, wrap, grow height
//	     ↓
//	PNG / data URL / JSON manifest
//
// # Quick Start
//
//	src := alphabet.NewFSSource(os.DirFS("/srv/streettype"))
//	runner := pipeline.NewRunner(alphabet.NewResolver(src), nil, nil, nil)
//	result, err := runner.Execute(ctx, pipeline.Options{Text: "Hi!", Case: "upper"})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("hi.png", result.Artifacts["png"], 0o644)
package pkg
