// Package tesseract implements ocr.Factory on libtesseract through gosseract.
// Builds without cgo get a factory whose workers always fail with
// ErrUnavailable, so extraction records an error instead of OCR text.
package tesseract

import "errors"

// ErrUnavailable is returned by workers of a binary built without cgo.
var ErrUnavailable = errors.New("tesseract OCR is not available in this build (requires cgo)")
