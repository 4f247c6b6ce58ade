// Package pkg provides the libraries behind xkcdify.
//
// # Overview
//
// xkcdify makes SVG drawings look hand-drawn, in the style of the xkcd
// webcomic. It splits every path into short segments, displaces them with
// smooth random noise, and can replace the fonts of text elements with a
// handwriting font such as Humor Sans. The pkg directory is organized into
// three areas:
//
//  1. Domain logic: [geom], [sketch], [svg], [fonts]
//  2. Orchestration: [pipeline] (parse, process, encode, with caching)
//  3. Infrastructure: [cache], [config], [server], [outline], [errors],
//     [observability], [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	SVG document
//	     ↓
//	[svg] package (parse into an element tree, select roots)
//	     ↓
//	[fonts] package (restyle text elements, optional)
//	     ↓
//	[svg] path data → [geom] paths
//	     ↓
//	[sketch] package (subdivide, then perturb with a seeded generator)
//	     ↓
//	[svg] encode → SVG document
//
// # Quick Start
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/xkcdify/pkg/pipeline"
//	)
//
//	opts := pipeline.DefaultOptions()
//	opts.ReplaceFont = true
//	opts.Seed = 7
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.ExecuteFile(context.Background(), "chart.svg", opts)
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(res.Output)
//
// # Main Packages
//
// ## Domain Logic
//
// [geom] - Paths as sub-paths of nodes, each node an anchor with its two
// control points.
//
// [sketch] - Subdivision to a maximum segment length and perturbation with
// smoothed noise. The generator is passed in explicitly so runs are
// reproducible; Mersenne Twister (the default) and PCG are available.
//
// [svg] - A document model that writes files back out close to how they came
// in, a lazy tree walker, length units, and path data parsing and formatting.
//
// [fonts] - Font replacement for text elements, and family names read from
// font files.
//
// ## Orchestration
//
// [pipeline] - Options with validation and defaults, [pipeline.Process] for a
// parsed document, and a Runner that caches results. Used by both the CLI and
// the HTTP server so they behave the same.
//
// ## Infrastructure
//
// [cache] - Cache interface with file, Redis, MongoDB and null backends.
//
// [config] - TOML configuration files with named presets.
//
// [server] - HTTP API built on chi.
//
// [outline] - The element tree as a Graphviz graph, showing what a run would
// touch.
//
// [errors] - Error codes shared by the CLI and the API.
//
// [observability] - Hook interfaces for metrics and tracing, no-ops by
// default.
//
// # Testing
//
// Run tests:
//
//	go test ./...                  # All tests
//	go test ./pkg/sketch/...       # Specific package
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/xkcdify/pkg/geom
// [sketch]: https://pkg.go.dev/github.com/matzehuels/xkcdify/pkg/sketch
// [svg]: https://pkg.go.dev/github.com/matzehuels/xkcdify/pkg/svg
// [fonts]: https://pkg.go.dev/github.com/matzehuels/xkcdify/pkg/fonts
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/xkcdify/pkg/pipeline
// [pipeline.Process]: https://pkg.go.dev/github.com/matzehuels/xkcdify/pkg/pipeline#Process
// [cache]: https://pkg.go.dev/github.com/matzehuels/xkcdify/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/xkcdify/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/xkcdify/pkg/server
// [outline]: https://pkg.go.dev/github.com/matzehuels/xkcdify/pkg/outline
// [errors]: https://pkg.go.dev/github.com/matzehuels/xkcdify/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/xkcdify/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/xkcdify/pkg/buildinfo
package pkg
