package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turnos-ai/orchestrator/pkg/version"
)

// handleDecide is the single decision endpoint. 200 carries every pipeline
// outcome including degraded ones; 400 is reserved for requests the pipeline
// cannot even start on.
func (s *Server) handleDecide(c *gin.Context) {
	workspaceID := c.GetHeader(headerWorkspaceID)
	if workspaceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + headerWorkspaceID + " header"})
		return
	}
	conversationID := c.GetHeader(headerConversationID)
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + headerConversationID + " header"})
		return
	}

	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	snap, err := req.snapshot(workspaceID, c.GetHeader(headerChannel), conversationID, c.GetString("request_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := s.router.Decide(c.Request.Context(), snap)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Full()})
}
