package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/complyops/backoffice/middleware"
)

// NewRouter builds the admin API with the shared error handler attached.
func NewRouter(h AdminHandlerInterface) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.ErrorHandler())
	RegisterRoutes(r, h)
	return r
}

func RegisterRoutes(r *gin.Engine, h AdminHandlerInterface) {
	api := r.Group("/api")

	q := api.Group("/queue")
	q.GET("/metrics", h.Metrics)
	q.GET("/history", h.History)
	q.POST("/items", h.Enqueue)
	q.POST("/pause", h.PauseQueue)
	q.POST("/resume", h.ResumeQueue)
	q.POST("/clean", h.Clean)
	q.GET("/dead-letter", h.ListDeadLetter)
	q.POST("/dead-letter/:id/retry", h.RetryDeadLetter)

	j := api.Group("/jobs")
	j.GET("", h.ListJobs)
	j.GET("/:type", h.GetJob)
	j.PUT("/:type/schedule", h.Schedule)
	j.POST("/:type/pause", h.PauseJob)
	j.POST("/:type/resume", h.ResumeJob)

	api.POST("/syncs/:type", h.TriggerSync)
}
