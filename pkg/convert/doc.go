// Package convert orchestrates one SVG to PNG conversion.
//
// An [Orchestrator] takes raw SVG text and drives a [Rasterizer] in one of
// two modes:
//
//   - [ModeDownload]: the PNG is handed to a raster.Saver under a filename
//   - [ModeDataURI]: the PNG is returned as a data:image/png;base64 URI and
//     shown through a [Display] as a link plus an image preview
//
// Both modes share a single path. Each call parses its own copy of the text,
// stages the element on the orchestrator's svgdoc.Document, rasterizes it and
// detaches it again on every exit path, including rasterizer panics. Both
// modes wait for the rasterizer to finish.
//
// # Usage
//
//	o := convert.NewOrchestrator(raster.NewRasterizer(engine), doc, logger)
//	o.Saver = raster.DirSaver{Dir: "out"}
//
//	res, err := o.Convert(ctx, svgText, "converted-image.png", convert.ModeDataURI)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Preview.LinkHref)
//
// [Orchestrator.ConvertAsync] returns a [Pending] for callers that start a
// conversion and collect it later.
package convert
