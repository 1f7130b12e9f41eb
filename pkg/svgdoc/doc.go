// Package svgdoc turns raw SVG markup into a staged element ready for
// rasterization.
//
// Markup is parsed the way a browser parses a string assigned to a
// container's innerHTML: leading prologs, comments, HTML wrappers and stray
// text are tolerated, and the first <svg> element found anywhere in the
// fragment becomes the root. Markup with no <svg> element fails with
// errors.ErrCodeNoSVGRoot.
//
// # Staging
//
// Some rasterizers need the element to live somewhere they can load it from
// (a file for rsvg-convert and inkscape, a page for a headless browser). A
// [Document] is that staging surface: [Document.Attach] writes the element
// to a hidden file in the document directory and returns a [Mount];
// [Mount.Detach] removes it again. Detach is idempotent, so callers pair
// every Attach with a deferred Detach:
//
//	el, err := svgdoc.Parse(text)
//	if err != nil {
//	    return err
//	}
//	el.EnsureNamespace()
//
//	m, err := doc.Attach(el)
//	if err != nil {
//	    return err
//	}
//	defer m.Detach()
//
// [Document.Attached] reports how many mounts are currently live.
package svgdoc
