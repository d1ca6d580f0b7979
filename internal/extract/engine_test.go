package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docchat-backend/internal/extract/ocr"
	"docchat-backend/internal/extract/raster"
)

type stubTextLayer struct {
	text  string
	pages int
	err   error
}

func (s stubTextLayer) Text([]byte) (string, int, error) {
	return s.text, s.pages, s.err
}

type stubWorker struct {
	texts  map[string]string
	err    error
	closed int
	seen   []string
}

func (w *stubWorker) Recognize(_ context.Context, image []byte) (string, error) {
	w.seen = append(w.seen, string(image))
	if w.err != nil {
		return "", w.err
	}
	return w.texts[string(image)], nil
}

func (w *stubWorker) Close() error {
	w.closed++
	return nil
}

type stubFactory struct {
	worker  *stubWorker
	err     error
	calls   int
	lastLng string
}

func (f *stubFactory) NewWorker(_ context.Context, lang string) (ocr.Worker, error) {
	f.calls++
	f.lastLng = lang
	if f.err != nil {
		return nil, f.err
	}
	return f.worker, nil
}

type stubRenderer struct {
	pages []int
	opts  raster.Options
	err   error
}

func (r *stubRenderer) RenderPage(_ context.Context, _ []byte, page int, opts raster.Options) ([]byte, error) {
	r.pages = append(r.pages, page)
	r.opts = opts
	if r.err != nil {
		return nil, r.err
	}
	return []byte("img-" + string(rune('0'+page))), nil
}

func newTestEngine(layer TextLayer, worker *stubWorker) (*Engine, *stubFactory, *stubRenderer) {
	factory := &stubFactory{worker: worker}
	renderer := &stubRenderer{}
	return &Engine{Native: layer, OCR: factory, Renderer: renderer}, factory, renderer
}

func TestExtractNativeTextSkipsOCR(t *testing.T) {
	worker := &stubWorker{}
	engine, factory, renderer := newTestEngine(stubTextLayer{
		text:  "Invoice #42\n\n  Total:   $1,250.00   due on receipt",
		pages: 1,
	}, worker)

	res, err := engine.Extract(context.Background(), []byte("%PDF"), "application/pdf", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Failed() {
		t.Fatalf("unexpected failure: %s", res.ErrorMessage)
	}
	if res.Text != "Invoice #42 Total: $1,250.00 due on receipt" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if res.Method != MethodNative || res.Pages != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if factory.calls != 0 || len(renderer.pages) != 0 {
		t.Fatalf("ocr should not run for a text pdf")
	}
}

func TestExtractScannedPDFUsesOCR(t *testing.T) {
	worker := &stubWorker{texts: map[string]string{
		"img-1": "first page",
		"img-2": "second page",
	}}
	engine, factory, renderer := newTestEngine(stubTextLayer{text: "  \n ", pages: 2}, worker)

	res, err := engine.Extract(context.Background(), []byte("%PDF"), "application/pdf", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "--- Page 1 ---\nfirst page\n\n--- Page 2 ---\nsecond page"
	if res.Text != want {
		t.Fatalf("text = %q, want %q", res.Text, want)
	}
	if res.Method != MethodOCR || res.ErrorMessage != "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if factory.calls != 1 || factory.lastLng != ocr.DefaultLanguage {
		t.Fatalf("expected one worker for %q, got %d for %q", ocr.DefaultLanguage, factory.calls, factory.lastLng)
	}
	if worker.closed != 1 {
		t.Fatalf("expected worker closed once, got %d", worker.closed)
	}
	if len(renderer.pages) != 2 || renderer.opts != raster.DefaultOptions() {
		t.Fatalf("unexpected render calls %v with %+v", renderer.pages, renderer.opts)
	}
}

func TestExtractShortNativeTextFallsBack(t *testing.T) {
	worker := &stubWorker{texts: map[string]string{"img-1": "scanned"}}
	engine, _, _ := newTestEngine(stubTextLayer{text: "Page 1", pages: 1}, worker)

	res, err := engine.Extract(context.Background(), []byte("%PDF"), "application/pdf", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(res.Text, "--- Page 1 ---") {
		t.Fatalf("expected ocr text, got %q", res.Text)
	}
}

func TestExtractZeroPagesRendersFirstPage(t *testing.T) {
	worker := &stubWorker{texts: map[string]string{"img-1": "only"}}
	engine, _, renderer := newTestEngine(stubTextLayer{}, worker)

	res, _ := engine.Extract(context.Background(), []byte("%PDF"), "application/pdf", Options{})
	if len(renderer.pages) != 1 || res.Text != "--- Page 1 ---\nonly" {
		t.Fatalf("unexpected result %+v pages=%v", res, renderer.pages)
	}
}

func TestExtractCorruptedPDFReturnsMessage(t *testing.T) {
	engine := &Engine{Native: PDFText{}}

	res, err := engine.Extract(context.Background(), []byte("garbage bytes"), "application/pdf", Options{})
	if err != nil {
		t.Fatalf("extraction failure must not be returned as error: %v", err)
	}
	if res.Text != "" || res.ErrorMessage == "" {
		t.Fatalf("expected empty text with message, got %+v", res)
	}
}

func TestExtractImage(t *testing.T) {
	worker := &stubWorker{texts: map[string]string{"png-bytes": "  Receipt total 10  \n"}}
	engine, factory, renderer := newTestEngine(nil, worker)

	res, err := engine.Extract(context.Background(), []byte("png-bytes"), "image/png", Options{Language: "eng"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "Receipt total 10" || res.Method != MethodOCR {
		t.Fatalf("unexpected result %+v", res)
	}
	if factory.lastLng != "eng" || worker.closed != 1 || len(renderer.pages) != 0 {
		t.Fatalf("unexpected ocr usage lang=%q closed=%d", factory.lastLng, worker.closed)
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	engine, factory, _ := newTestEngine(nil, &stubWorker{})

	_, err := engine.Extract(context.Background(), []byte("hello"), "text/plain", Options{})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if factory.calls != 0 {
		t.Fatalf("ocr should not start for unsupported types")
	}
}

func TestExtractClosesWorkerOnFailure(t *testing.T) {
	tests := []struct {
		name     string
		worker   *stubWorker
		renderer *stubRenderer
	}{
		{"recognize error", &stubWorker{err: errors.New("tesseract crashed")}, &stubRenderer{}},
		{"render error", &stubWorker{}, &stubRenderer{err: errors.New("pdftoppm missing")}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			engine := &Engine{
				Native:   stubTextLayer{pages: 3},
				OCR:      &stubFactory{worker: tc.worker},
				Renderer: tc.renderer,
			}
			res, err := engine.Extract(context.Background(), []byte("%PDF"), "application/pdf", Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Text != "" || res.ErrorMessage == "" {
				t.Fatalf("expected failure message, got %+v", res)
			}
			if tc.worker.closed != 1 {
				t.Fatalf("worker must be released, closed=%d", tc.worker.closed)
			}
		})
	}
}

func TestExtractWorkerStartFailure(t *testing.T) {
	engine := &Engine{
		Native:   stubTextLayer{pages: 1},
		OCR:      &stubFactory{err: errors.New("no traineddata")},
		Renderer: &stubRenderer{},
	}
	res, err := engine.Extract(context.Background(), []byte("%PDF"), "application/pdf", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.ErrorMessage, "no traineddata") {
		t.Fatalf("unexpected message %q", res.ErrorMessage)
	}
}

type panicLayer struct{}

func (panicLayer) Text([]byte) (string, int, error) { panic("boom") }

func TestExtractRecoversPanics(t *testing.T) {
	engine := &Engine{Native: panicLayer{}}
	res, err := engine.Extract(context.Background(), []byte("%PDF"), "application/pdf", Options{})
	if err != nil || res.ErrorMessage == "" {
		t.Fatalf("expected recovered failure, got %+v err=%v", res, err)
	}
}

func TestExtractEmptyFile(t *testing.T) {
	engine, _, _ := newTestEngine(stubTextLayer{text: strings.Repeat("x", 100)}, &stubWorker{})
	res, err := engine.Extract(context.Background(), nil, "application/pdf", Options{})
	if err != nil || res.ErrorMessage == "" {
		t.Fatalf("expected failure message for empty file, got %+v err=%v", res, err)
	}
}
