package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rydhlnst/capstone-project/internal/common"
	"github.com/Rydhlnst/capstone-project/internal/store/database"
)

type analyzeReq struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// Analyze runs the extraction pipeline for a YouTube URL and appends the
// result to the session. A failed extraction leaves the session untouched.
func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeReq
	_ = c.ShouldBindJSON(&req)
	if req.URL == "" || req.SessionID == "" {
		common.Fail(c, http.StatusBadRequest, "Missing required fields: url, sessionId")
		return
	}

	log.Printf("analyze: starting url=%s session=%s", req.URL, req.SessionID)

	result, err := h.Analyzer.AnalyzeURL(c.Request.Context(), req.URL)
	if err != nil {
		common.FailDetails(c, http.StatusInternalServerError,
			"Internal server error during YouTube analysis", err.Error())
		return
	}

	if err := h.Store.AppendAnalysis(c.Request.Context(), req.SessionID, *result); err != nil {
		common.FailDetails(c, http.StatusInternalServerError,
			"Internal server error during YouTube analysis", err.Error())
		return
	}

	// Mirror into the relational store when configured. Best effort: the
	// session copy is already committed.
	if h.Repo != nil {
		if video, verr := database.VideoFromResult(result); verr == nil {
			if verr := h.Repo.UpsertVideo(c.Request.Context(), video); verr != nil {
				log.Printf("analyze: video upsert failed youtube_id=%s err=%v", video.YouTubeID, verr)
			}
		}
	}

	log.Printf("analyze: completed session=%s analysis=%s title=%q transcript_len=%d",
		req.SessionID, result.ID, result.Title, len(result.Transcript))

	common.OK(c, result)
}
