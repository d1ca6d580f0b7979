package chat

import (
	"errors"

	"docchat-backend/internal/llm"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrServiceUnavailable matches the completion backend sentinel.
	ErrServiceUnavailable = llm.ErrServiceUnavailable
)
