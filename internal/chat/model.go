package chat

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one stored chat turn attached to a document.
type Message struct {
	ID         string
	DocumentID string
	Role       string
	Content    string
	Metadata   map[string]any
	CreatedAt  time.Time
}

// Turn is the pair of messages produced by one exchange.
type Turn struct {
	User      Message
	Assistant Message
}
