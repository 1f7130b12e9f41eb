package convert

import (
	"context"
)

const (
	// PreviewLinkText is the label of the data URI link.
	PreviewLinkText = "Right-click to copy Base64 PNG URL"

	// PreviewLinkTitle is the hover title of the data URI link.
	PreviewLinkTitle = `Right-click and select "Copy Link Address"`
)

// Preview is what the page shows after a data URI conversion: a link whose
// target is the URI and an image whose source is the same URI.
type Preview struct {
	LinkHref  string `json:"link_href"`
	LinkText  string `json:"link_text"`
	LinkTitle string `json:"link_title"`
	ImageSrc  string `json:"image_src"`
}

// NewPreview builds the preview for uri.
func NewPreview(uri string) Preview {
	return Preview{
		LinkHref:  uri,
		LinkText:  PreviewLinkText,
		LinkTitle: PreviewLinkTitle,
		ImageSrc:  uri,
	}
}

// Display receives previews as they are produced.
type Display interface {
	Show(ctx context.Context, p Preview)
}

// DisplayFunc adapts a function to the Display interface.
type DisplayFunc func(ctx context.Context, p Preview)

// Show calls f.
func (f DisplayFunc) Show(ctx context.Context, p Preview) {
	f(ctx, p)
}
