package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/shared/telemetry"
)

const documentIDKey = "documentId"

// SetDocumentID tags the request log line with the document being served.
func SetDocumentID(c *gin.Context, documentID string) {
	c.Set(documentIDKey, documentID)
}

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		documentID := c.GetString(documentIDKey)
		if documentID == "" {
			documentID = c.Param("id")
		}

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": telemetry.DurationMs(time.Since(start)),
			"user_id":     UserIDFromContext(c),
			"document_id": documentID,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		telemetry.Info("request.complete", fields)
	}
}
