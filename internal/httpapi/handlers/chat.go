package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rydhlnst/capstone-project/internal/common"
)

type chatReq struct {
	Message    string `json:"message"`
	SessionID  string `json:"sessionId"`
	AnalysisID string `json:"analysisId"`
}

// Chat runs one conversation turn. The session is created transparently when
// the id is unseen; system messages never appear in the response.
func (h *Handler) Chat(c *gin.Context) {
	var req chatReq
	_ = c.ShouldBindJSON(&req)
	if req.Message == "" || req.SessionID == "" {
		common.Fail(c, http.StatusBadRequest, "Missing required fields: message, sessionId")
		return
	}

	reply, history, err := h.ChatSvc.SendMessage(c.Request.Context(), req.SessionID, req.Message, req.AnalysisID)
	if err != nil {
		log.Printf("chat: turn failed session=%s err=%v", req.SessionID, err)
		common.FailDetails(c, http.StatusInternalServerError,
			"Internal server error during chat", err.Error())
		return
	}

	common.OK(c, gin.H{
		"response":            reply,
		"conversationHistory": history,
	})
}
