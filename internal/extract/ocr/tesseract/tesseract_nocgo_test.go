//go:build !cgo

package tesseract

import (
	"context"
	"errors"
	"testing"
)

func TestNewWorkerUnavailableWithoutCgo(t *testing.T) {
	f := New(" /usr/share/tessdata ")
	if f.TessdataPrefix != "/usr/share/tessdata" {
		t.Fatalf("unexpected prefix %q", f.TessdataPrefix)
	}
	if _, err := f.NewWorker(context.Background(), "por"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
