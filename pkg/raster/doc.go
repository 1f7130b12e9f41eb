// Package raster converts staged SVG elements into PNG images.
//
// The package plays the part of the external rasterizer: it exposes the two
// operations the conversion orchestrator needs through [Rasterizer]:
//
//   - SavePNG renders the element and hands the PNG to a [Saver] under a
//     caller-supplied filename (the "download" path)
//   - PNGDataURI renders the element and returns a data:image/png;base64 URI
//
// # Engines
//
// Rendering itself is delegated to an [Engine]:
//
//   - oksvg: pure Go rasterizer (srwiley/oksvg + srwiley/rasterx); always available
//   - rsvg-convert: librsvg command line tool
//   - inkscape: Inkscape command line export
//   - browser: headless Chromium driven by playwright; renders exactly what a
//     browser would
//
// A [Chain] tries engines in order and falls back on failure; a
// [CachedEngine] stores rendered PNGs in a cache.Cache.
//
// # Options
//
// [Options] carries the scale factor (a device pixel ratio: 2 renders twice
// as many pixels per axis) and the encoder quality in [0, 1]. PNG is
// lossless, so quality only selects the zlib compression effort.
package raster
