// Package llm defines the completion backend used to answer questions about
// a document, plus the error classification shared by every provider.
package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one prior turn of a conversation.
type Message struct {
	Role    string
	Content string
}

// Request is a single grounded completion call.
type Request struct {
	System  string
	History []Message
	User    string
	// Title is the document title; providers may use it for logging only.
	Title string
}

// Completion is the backend's reply.
type Completion struct {
	Text     string
	Provider string
	Model    string
}

// Completer abstracts completion providers.
type Completer interface {
	Complete(ctx context.Context, req Request) (Completion, error)
	Name() string
	Model() string
}

// ErrServiceUnavailable marks a backend that is overloaded, rate limited,
// still loading its model, timing out or not configured.
var ErrServiceUnavailable = errors.New("completion service unavailable")

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

// Complete always fails with ErrServiceUnavailable.
func (PlaceholderClient) Complete(ctx context.Context, req Request) (Completion, error) {
	_ = ctx
	_ = req
	return Completion{}, errNotConfigured
}

func (PlaceholderClient) Name() string  { return "none" }
func (PlaceholderClient) Model() string { return "" }

var errNotConfigured = &unavailableError{cause: errors.New("no completion provider configured")}

var _ Completer = PlaceholderClient{}
