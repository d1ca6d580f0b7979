package documents

import (
	"errors"

	"docchat-backend/internal/extract"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrForbidden    = errors.New("document belongs to another user")
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedType is the extraction sentinel so either package's value matches.
	ErrUnsupportedType = extract.ErrUnsupportedType
)
