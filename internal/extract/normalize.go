package extract

import (
	"regexp"
	"strings"
)

// Kind classifies an upload by MIME type.
type Kind int

const (
	KindUnsupported Kind = iota
	KindPDF
	KindImage
)

const mimePDF = "application/pdf"

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize collapses every whitespace run to a single space and trims.
func Normalize(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Classify maps a MIME type to a Kind. Parameters such as charset are ignored.
func Classify(mimeType string) Kind {
	clean := CleanMimeType(mimeType)
	switch {
	case clean == mimePDF:
		return KindPDF
	case strings.HasPrefix(clean, "image/"):
		return KindImage
	default:
		return KindUnsupported
	}
}

// CleanMimeType lowercases a MIME type and strips its parameters.
func CleanMimeType(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindImage:
		return "image"
	default:
		return "unsupported"
	}
}
