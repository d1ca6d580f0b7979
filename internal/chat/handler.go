package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/documents"
	"docchat-backend/internal/shared/server/middleware"
	"docchat-backend/internal/shared/server/respond"
)

// RateLimitGroup names the limiter rule applied to sending messages.
const RateLimitGroup = "CHAT_SEND"

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches message routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents/:id/messages", h.list)
	rg.POST("/documents/:id/messages", h.send)
}

// RateLimitGroupFor tags message sends for the rate limiter.
func RateLimitGroupFor(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/documents/:id/messages" {
		return RateLimitGroup
	}
	return ""
}

func (h *Handler) list(c *gin.Context) {
	msgs, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to list messages")
		return
	}
	resp := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, toResponse(m))
	}
	respond.OK(c, resp)
}

func (h *Handler) send(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	turn, err := h.Svc.Send(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), req.Content)
	if err != nil {
		writeError(c, err, "failed to send message")
		return
	}
	respond.JSON(c, http.StatusCreated, TurnResponse{
		UserMsg:      toResponse(turn.User),
		AssistantMsg: toResponse(turn.Assistant),
	})
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, documents.ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "not your document", nil)
	case errors.Is(err, ErrServiceUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "service_unavailable", "the completion service is unavailable, try again shortly", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
