package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rydhlnst/capstone-project/internal/common"
	"github.com/Rydhlnst/capstone-project/internal/store/database"
)

// AnalyzeAsync queues the URL for background extraction instead of blocking
// the request. Requires both the database and the broker.
func (h *Handler) AnalyzeAsync(c *gin.Context) {
	if h.Repo == nil || h.Rabbit == nil {
		common.Fail(c, http.StatusServiceUnavailable, "Async analysis not configured")
		return
	}

	var req analyzeReq
	_ = c.ShouldBindJSON(&req)
	if req.URL == "" || req.SessionID == "" {
		common.Fail(c, http.StatusBadRequest, "Missing required fields: url, sessionId")
		return
	}

	jobID, err := common.NewULID()
	if err != nil {
		common.FailDetails(c, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	job := &database.AnalysisJob{
		ID:        jobID,
		SessionID: req.SessionID,
		URL:       req.URL,
		Status:    database.JobQueued,
	}
	if err := h.Repo.CreateJob(c.Request.Context(), job); err != nil {
		common.FailDetails(c, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	if err := h.Rabbit.PublishJob(c.Request.Context(), jobID); err != nil {
		// Leave the row queued; a requeue sweep or manual retry can pick it up.
		log.Printf("jobs: publish failed job=%s err=%v", jobID, err)
		common.FailDetails(c, http.StatusInternalServerError, "Failed to enqueue analysis job", err.Error())
		return
	}

	common.OK(c, gin.H{"jobId": jobID, "status": job.Status})
}

func (h *Handler) GetJob(c *gin.Context) {
	if h.Repo == nil {
		common.Fail(c, http.StatusServiceUnavailable, "Async analysis not configured")
		return
	}

	job, err := h.Repo.GetJobByID(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		common.Fail(c, http.StatusNotFound, "Job not found")
		return
	}
	common.OK(c, job)
}
