package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/insightlens/insightlens/internal/middleware"
)

type RouterDeps struct {
	Documents *DocumentHandler
	Compare   *CompareHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	// Upload and compare kick off background work, so they get a
	// double-submit guard on top of the global middlewares.
	submitGuard := middleware.RateLimit(time.Second)

	api.POST("/documents", submitGuard, deps.Documents.Upload)
	api.GET("/documents", deps.Documents.List)
	api.GET("/documents/:id", deps.Documents.Get)
	api.GET("/documents/:id/sections", deps.Documents.Sections)
	api.DELETE("/documents/:id", deps.Documents.Delete)
	api.GET("/documents/:id/comparisons", deps.Compare.ListByDocument)

	api.POST("/compare", submitGuard, deps.Compare.Submit)
	api.GET("/compare/jobs/:id", deps.Compare.JobStatus)
	api.GET("/comparisons/:id", deps.Compare.Get)
}
