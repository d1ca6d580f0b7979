// Package extract turns uploaded PDFs and images into plain text: the PDF
// text layer first, OCR over rasterized pages when that layer is too thin.
//
// Extraction failures never fail an upload. They come back as a Result with
// an empty Text and a human-readable ErrorMessage. The only error returned
// by Extract is ErrUnsupportedType.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"docchat-backend/internal/extract/ocr"
	"docchat-backend/internal/extract/raster"
	"docchat-backend/internal/shared/metrics"
	"docchat-backend/internal/shared/telemetry"
)

const (
	DefaultNativeMinChars = 30

	MethodNative = "native"
	MethodOCR    = "ocr"
)

// ErrUnsupportedType is returned for MIME types that are neither PDF nor image.
var ErrUnsupportedType = errors.New("unsupported file type")

// TextLayer reads the embedded text of a PDF.
type TextLayer interface {
	Text(data []byte) (text string, pages int, err error)
}

// Options tune a single extraction. Zero values take the engine defaults.
type Options struct {
	Language       string
	NativeMinChars int
	Raster         raster.Options
}

// Result is the outcome of an extraction.
type Result struct {
	Text         string
	ErrorMessage string
	Method       string
	Pages        int
}

// Failed reports whether extraction produced an error message.
func (r Result) Failed() bool {
	return r.ErrorMessage != ""
}

// Engine runs the native-then-OCR extraction strategy.
type Engine struct {
	Native   TextLayer
	OCR      ocr.Factory
	Renderer raster.Renderer
	Defaults Options
}

// NewEngine wires an engine with the PDF text layer reader and the given
// OCR and rasterizer backends.
func NewEngine(ocrFactory ocr.Factory, renderer raster.Renderer, defaults Options) *Engine {
	return &Engine{
		Native:   PDFText{},
		OCR:      ocrFactory,
		Renderer: renderer,
		Defaults: defaults,
	}
}

// Extract extracts text from data according to its MIME type.
func (e *Engine) Extract(ctx context.Context, data []byte, mimeType string, opts Options) (Result, error) {
	kind := Classify(mimeType)
	if kind == KindUnsupported {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedType, CleanMimeType(mimeType))
	}
	opts = e.resolve(opts)

	start := time.Now()
	res, err := e.run(ctx, data, kind, opts)
	elapsed := time.Since(start)
	metrics.ObserveExtractionDurationMs(float64(elapsed.Milliseconds()))
	fields := map[string]any{
		"kind":        kind.String(),
		"method":      res.Method,
		"pages":       res.Pages,
		"size_bytes":  len(data),
		"duration_ms": telemetry.DurationMs(elapsed),
	}
	if err != nil {
		metrics.IncExtractionFailed()
		fields["err"] = err
		telemetry.Warn("extract.failed", fields)
		return Result{ErrorMessage: failureMessage(err), Method: res.Method, Pages: res.Pages}, nil
	}
	fields["chars"] = utf8.RuneCountInString(res.Text)
	telemetry.Info("extract.done", fields)
	return res, nil
}

func (e *Engine) run(ctx context.Context, data []byte, kind Kind, opts Options) (res Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("extraction panicked: %v", rec)
		}
	}()
	if len(data) == 0 {
		return Result{}, errors.New("empty file")
	}

	switch kind {
	case KindPDF:
		return e.extractPDF(ctx, data, opts)
	default:
		text, err := e.ocrImage(ctx, data, opts.Language)
		return Result{Text: text, Method: MethodOCR, Pages: 1}, err
	}
}

func (e *Engine) extractPDF(ctx context.Context, data []byte, opts Options) (Result, error) {
	if e.Native == nil {
		return Result{}, errors.New("pdf text reader not configured")
	}
	native, pages, err := e.Native.Text(data)
	if err != nil {
		return Result{Method: MethodNative}, err
	}

	normalized := Normalize(native)
	if utf8.RuneCountInString(normalized) >= opts.NativeMinChars {
		return Result{Text: normalized, Method: MethodNative, Pages: pages}, nil
	}

	metrics.IncOCRFallback()
	telemetry.Info("extract.ocr_fallback", map[string]any{
		"native_chars": utf8.RuneCountInString(normalized),
		"threshold":    opts.NativeMinChars,
		"pages":        pages,
	})
	text, err := e.ocrPDF(ctx, data, pages, opts)
	return Result{Text: text, Method: MethodOCR, Pages: pages}, err
}

// ocrPDF rasterizes every page and recognizes it with a single worker,
// prefixing each page's text with a "--- Page N ---" marker.
func (e *Engine) ocrPDF(ctx context.Context, data []byte, pages int, opts Options) (string, error) {
	if e.Renderer == nil {
		return "", errors.New("pdf rasterizer not configured")
	}
	if pages < 1 {
		pages = 1
	}

	worker, err := e.acquire(ctx, opts.Language)
	if err != nil {
		return "", err
	}
	defer release(worker)

	var b strings.Builder
	for page := 1; page <= pages; page++ {
		img, err := e.Renderer.RenderPage(ctx, data, page, opts.Raster)
		if err != nil {
			return "", fmt.Errorf("render page %d: %w", page, err)
		}
		if len(img) == 0 {
			continue
		}
		text, err := worker.Recognize(ctx, img)
		if err != nil {
			return "", fmt.Errorf("ocr page %d: %w", page, err)
		}
		fmt.Fprintf(&b, "\n\n--- Page %d ---\n%s", page, text)
	}
	return strings.TrimSpace(b.String()), nil
}

func (e *Engine) ocrImage(ctx context.Context, data []byte, lang string) (string, error) {
	worker, err := e.acquire(ctx, lang)
	if err != nil {
		return "", err
	}
	defer release(worker)

	text, err := worker.Recognize(ctx, data)
	if err != nil {
		return "", fmt.Errorf("ocr image: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (e *Engine) acquire(ctx context.Context, lang string) (ocr.Worker, error) {
	if e.OCR == nil {
		return nil, errors.New("ocr engine not configured")
	}
	worker, err := e.OCR.NewWorker(ctx, lang)
	if err != nil {
		return nil, fmt.Errorf("start ocr worker: %w", err)
	}
	return worker, nil
}

func release(worker ocr.Worker) {
	if err := worker.Close(); err != nil {
		telemetry.Warn("extract.ocr_close_failed", map[string]any{"err": err})
	}
}

func (e *Engine) resolve(opts Options) Options {
	if opts.Language == "" {
		opts.Language = e.Defaults.Language
	}
	if opts.Language == "" {
		opts.Language = ocr.DefaultLanguage
	}
	if opts.NativeMinChars <= 0 {
		opts.NativeMinChars = e.Defaults.NativeMinChars
	}
	if opts.NativeMinChars <= 0 {
		opts.NativeMinChars = DefaultNativeMinChars
	}
	if opts.Raster == (raster.Options{}) {
		opts.Raster = e.Defaults.Raster
	}
	if opts.Raster == (raster.Options{}) {
		opts.Raster = raster.DefaultOptions()
	}
	return opts
}

func failureMessage(err error) string {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "Extraction failed"
	}
	return msg
}
