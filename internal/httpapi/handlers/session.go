package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rydhlnst/capstone-project/internal/common"
	"github.com/Rydhlnst/capstone-project/internal/session"
)

func (h *Handler) CreateSession(c *gin.Context) {
	sess, err := h.Store.Create(c.Request.Context())
	if err != nil {
		common.FailDetails(c, http.StatusInternalServerError, "Gagal membuat session", err.Error())
		return
	}
	common.OK(c, gin.H{"sessionId": sess.SessionID})
}

func (h *Handler) GetSession(c *gin.Context) {
	sessionID := c.Param("sessionId")

	sess, err := h.Store.Get(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, "Session not found")
			return
		}
		common.FailDetails(c, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	common.OK(c, gin.H{
		"sessionId":           sessionID,
		"conversationHistory": sess.VisibleHistory(),
	})
}

func (h *Handler) Health(c *gin.Context) {
	common.OK(c, gin.H{
		"service":   "Intinya aja dongs Backend",
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) Stats(c *gin.Context) {
	if h.Repo == nil {
		common.Fail(c, http.StatusServiceUnavailable, "Database not configured")
		return
	}
	stats, err := h.Repo.GetStats(c.Request.Context())
	if err != nil {
		common.FailDetails(c, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}
	common.OK(c, stats)
}
