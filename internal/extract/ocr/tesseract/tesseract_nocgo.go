//go:build !cgo

package tesseract

import (
	"context"
	"strings"

	"docchat-backend/internal/extract/ocr"
)

// Factory stands in for the libtesseract backend in cgo-free builds.
type Factory struct {
	TessdataPrefix string
}

func New(tessdataPrefix string) *Factory {
	return &Factory{TessdataPrefix: strings.TrimSpace(tessdataPrefix)}
}

func (t *Factory) NewWorker(ctx context.Context, _ string) (ocr.Worker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, ErrUnavailable
}

func (t *Factory) Version() string { return "" }

var _ ocr.Factory = (*Factory)(nil)
