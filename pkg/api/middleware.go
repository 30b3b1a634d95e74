package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Required routing headers.
const (
	headerWorkspaceID    = "X-Workspace-Id"
	headerChannel        = "X-Channel"
	headerConversationID = "X-Conversation-Id"
	headerRequestID      = "X-Request-Id"
)

// requestIDMiddleware assigns a request id when the caller sent none and
// echoes it back.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// loggingMiddleware emits one structured line per request. User text never
// reaches the log; conversation ids may be phone-derived, so they are
// hashed.
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString("request_id"),
			"workspace_id", c.GetHeader(headerWorkspaceID),
			"conversation_id", hashPII(c.GetHeader(headerConversationID)),
		)
	}
}
