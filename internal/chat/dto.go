package chat

import "time"

// MessageResponse is the outward-facing representation of a message.
type MessageResponse struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// TurnResponse pairs the stored question and reply.
type TurnResponse struct {
	UserMsg      MessageResponse `json:"userMsg"`
	AssistantMsg MessageResponse `json:"assistantMsg"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func toResponse(msg Message) MessageResponse {
	return MessageResponse{
		ID:        msg.ID,
		Role:      msg.Role,
		Content:   msg.Content,
		Metadata:  msg.Metadata,
		CreatedAt: msg.CreatedAt,
	}
}
