package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rydhlnst/capstone-project/internal/common"
	"github.com/Rydhlnst/capstone-project/internal/httpapi/handlers"
	"github.com/Rydhlnst/capstone-project/internal/httpapi/middleware"
)

// NewRouter wires every endpoint onto a gin engine.
func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(gin.Logger())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, "Not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.GET("/health", h.Health)
	r.GET("/stats", h.Stats)

	r.POST("/analyze", h.Analyze)
	r.POST("/analyze/upload", h.AnalyzeUpload)
	r.POST("/analyze/async", h.AnalyzeAsync)
	r.GET("/analyze/jobs/:job_id", h.GetJob)

	r.POST("/chat", h.Chat)

	r.POST("/session", h.CreateSession)
	r.GET("/session/:sessionId", h.GetSession)

	return r
}
