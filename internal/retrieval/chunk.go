// Package retrieval turns a document's extracted text and a question into a
// bounded prompt context: sliding-window chunking, keyword ranking and
// context assembly. Everything here is pure and safe for concurrent use.
package retrieval

import "errors"

const (
	DefaultChunkSize       = 1200
	DefaultChunkOverlap    = 200
	DefaultTopK            = 5
	DefaultMaxContextChars = 12000
)

// ErrInvalidWindow is returned when the overlap would stall the window.
var ErrInvalidWindow = errors.New("overlap must be >= 0 and < size")

// Chunk splits text into windows of size runes, each starting size-overlap
// runes after the previous one. The last window may be shorter.
func Chunk(text string, size, overlap int) ([]string, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, ErrInvalidWindow
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return []string{}, nil
	}

	step := size - overlap
	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := min(start+size, len(runes))
		out = append(out, string(runes[start:end]))
	}
	return out, nil
}
