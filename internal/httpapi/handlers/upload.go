package handlers

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Rydhlnst/capstone-project/internal/common"
)

var allowedUploadPrefixes = []string{
	"audio/", "video/", "text/",
	"application/pdf",
}

func uploadTypeAllowed(contentType string) bool {
	for _, prefix := range allowedUploadPrefixes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}

// AnalyzeUpload accepts a media or document file instead of a YouTube URL and
// appends the resulting analysis to the session.
func (h *Handler) AnalyzeUpload(c *gin.Context) {
	sessionID := c.PostForm("sessionId")
	file, err := c.FormFile("file")
	if err != nil || sessionID == "" {
		common.Fail(c, http.StatusBadRequest, "Missing required fields: file, sessionId")
		return
	}

	if file.Size > h.Cfg.UploadMaxBytes {
		common.Fail(c, http.StatusBadRequest, "File too large")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !uploadTypeAllowed(contentType) {
		common.Fail(c, http.StatusBadRequest, "Unsupported file type")
		return
	}

	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		common.FailDetails(c, http.StatusInternalServerError,
			"Internal server error during file analysis", err.Error())
		return
	}
	storedPath := filepath.Join(h.Cfg.UploadDir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		common.FailDetails(c, http.StatusInternalServerError,
			"Internal server error during file analysis", err.Error())
		return
	}

	result, err := h.Analyzer.AnalyzeFile(c.Request.Context(), storedPath, file.Filename, contentType, file.Size)
	if err != nil {
		common.FailDetails(c, http.StatusInternalServerError,
			"Internal server error during file analysis", err.Error())
		return
	}

	if err := h.Store.AppendAnalysis(c.Request.Context(), sessionID, *result); err != nil {
		common.FailDetails(c, http.StatusInternalServerError,
			"Internal server error during file analysis", err.Error())
		return
	}

	log.Printf("upload: analyzed session=%s analysis=%s file=%q size=%d", sessionID, result.ID, file.Filename, file.Size)
	common.OK(c, result)
}
