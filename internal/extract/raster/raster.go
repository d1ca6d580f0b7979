// Package raster renders PDF pages to images for OCR.
package raster

import "context"

// Options controls page rendering.
type Options struct {
	DPI int
	// ScaleTo bounds the longest side in pixels; 0 keeps the DPI size.
	ScaleTo int
	Format  string
}

// DefaultOptions renders 200 DPI PNGs no larger than 2000px.
func DefaultOptions() Options {
	return Options{DPI: 200, ScaleTo: 2000, Format: "png"}
}

// Renderer renders a single 1-based page of a PDF to image bytes.
type Renderer interface {
	RenderPage(ctx context.Context, pdf []byte, page int, opts Options) ([]byte, error)
}
