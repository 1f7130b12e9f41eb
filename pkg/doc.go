// Package pkg provides the core libraries for svg2png.
//
// # Overview
//
// svg2png turns an SVG document into a PNG, either handed to the user as a
// file ("Download PNG") or returned as a data:image/png;base64 URI with a
// preview ("Get Base64"). The pkg directory is organized into three areas:
//
//  1. Conversion - parsing, staging and rasterizing SVG markup
//  2. Selection - reading files into sessions and dispatching actions on them
//  3. Infrastructure - caching, configuration, errors and hooks
//
// # Architecture
//
// The data flow of one action:
//
//	SVG file or URL
//	     ↓
//	[intake] (size check, store as the session's selection)
//	     ↓
//	[dispatch] (snapshot the selection, pick the mode)
//	     ↓
//	[convert] (parse with [svgdoc], stage, call the rasterizer)
//	     ↓
//	[raster] (engine chain, PNG cache, data URI or saver)
//	     ↓
//	converted-image.png or data:image/png;base64,...
//
// # Quick Start
//
// Convert markup to a data URI:
//
//	doc, _ := svgdoc.NewDocument("")
//	defer doc.Close()
//
//	chain, _ := raster.DefaultChain(raster.EngineAuto, false)
//	orch := convert.NewOrchestrator(raster.NewRasterizer(chain), doc, logger)
//
//	res, err := orch.Convert(ctx, markup, "", convert.ModeDataURI)
//	fmt.Println(res.URI)
//
// # Main Packages
//
// ## Conversion
//
// [svgdoc] - Locates the first <svg> element in a fragment, defaults its
// namespace and stages it as a hidden file for the duration of a conversion.
//
// [raster] - Rasterization engines (oksvg, rsvg-convert, inkscape, headless
// Chromium) behind a fallback chain, a cache decorator, data URI encoding and
// savers.
//
// [convert] - The conversion orchestrator: modes, filenames, timeouts and
// previews.
//
// ## Selection
//
// [session] - The per-user selection slot with memory, file, Redis and
// MongoDB stores.
//
// [intake] - Reads files, uploads and URLs into sessions under a size limit.
//
// [dispatch] - The two user actions on the current selection.
//
// ## Infrastructure
//
// [cache] - PNG artifact cache with file, Redis and null backends.
//
// [httputil] - Fetches remote SVGs with retries and a response cache.
//
// [config] - TOML configuration.
//
// [errors] - Coded errors shared by the CLI and the HTTP server.
//
// [observability] - Hooks for conversion, cache and HTTP events.
//
// [buildinfo] - Version information set at build time.
//
// [svgdoc]: https://pkg.go.dev/github.com/matzehuels/svg2png/pkg/svgdoc
// [raster]: https://pkg.go.dev/github.com/matzehuels/svg2png/pkg/raster
// [convert]: https://pkg.go.dev/github.com/matzehuels/svg2png/pkg/convert
// [session]: https://pkg.go.dev/github.com/matzehuels/svg2png/pkg/session
// [intake]: https://pkg.go.dev/github.com/matzehuels/svg2png/pkg/intake
// [dispatch]: https://pkg.go.dev/github.com/matzehuels/svg2png/pkg/dispatch
// [cache]: https://pkg.go.dev/github.com/matzehuels/svg2png/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/svg2png/pkg/httputil
// [config]: https://pkg.go.dev/github.com/matzehuels/svg2png/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/svg2png/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/svg2png/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/svg2png/pkg/buildinfo
package pkg
