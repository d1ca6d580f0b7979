//go:build cgo

package tesseract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"docchat-backend/internal/extract/ocr"
)

// Factory creates gosseract clients, one per worker.
type Factory struct {
	// TessdataPrefix overrides the tessdata directory when set.
	TessdataPrefix string
}

// New returns a Factory backed by libtesseract.
func New(tessdataPrefix string) *Factory {
	return &Factory{TessdataPrefix: strings.TrimSpace(tessdataPrefix)}
}

// NewWorker allocates a Tesseract client configured for lang.
func (t *Factory) NewWorker(ctx context.Context, lang string) (ocr.Worker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(lang) == "" {
		lang = ocr.DefaultLanguage
	}
	client := gosseract.NewClient()
	if t.TessdataPrefix != "" {
		client.TessdataPrefix = t.TessdataPrefix
	}
	if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("tesseract language %q: %w", lang, err)
	}
	return &tesseractWorker{client: client}, nil
}

// Version reports the linked Tesseract version.
func (t *Factory) Version() string {
	return gosseract.Version()
}

type tesseractWorker struct {
	client *gosseract.Client
}

func (w *tesseractWorker) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(image) == 0 {
		return "", errors.New("empty image")
	}
	if err := w.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("tesseract set image: %w", err)
	}
	text, err := w.client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract recognize: %w", err)
	}
	return text, nil
}

func (w *tesseractWorker) Close() error {
	if w.client == nil {
		return nil
	}
	err := w.client.Close()
	w.client = nil
	return err
}

var _ ocr.Factory = (*Factory)(nil)
