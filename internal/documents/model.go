package documents

import "time"

// Document represents an uploaded document owned by a single user.
type Document struct {
	ID              string
	UserID          string
	Title           string
	OriginalName    string
	MimeType        string
	SizeBytes       int64
	StorageProvider string
	StorageKey      string

	ExtractedText    string
	Summary          string
	ErrorMessage     string
	ExtractionMethod string
	PageCount        int
	ExtractedAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Extraction is the outcome of text extraction recorded on a document.
type Extraction struct {
	Text         string
	Summary      string
	ErrorMessage string
	Method       string
	Pages        int
	At           time.Time
}
