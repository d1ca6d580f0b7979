// Package ocr provides text recognition workers for rasterized pages and images.
package ocr

import "context"

// DefaultLanguage is the Tesseract language model used when none is given.
const DefaultLanguage = "por"

// Worker recognizes text in images. A worker holds engine resources until Close.
type Worker interface {
	Recognize(ctx context.Context, image []byte) (string, error)
	Close() error
}

// Factory acquires a worker bound to a language model.
type Factory interface {
	NewWorker(ctx context.Context, lang string) (Worker, error)
}
