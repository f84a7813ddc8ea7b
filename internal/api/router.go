package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	_ "go-title-enrich/docs"
	"go-title-enrich/internal/api/handler"
	"go-title-enrich/pkg/router"
)

func RegisterRoutes(r *router.Router) {
	r.POST("/api/v1/runs", handler.CreateRun)
	r.GET("/api/v1/runs", handler.ListRuns)
	// More specific routes first
	r.GET("/api/v1/runs/*/errors", handler.GetRunErrors)
	r.GET("/api/v1/runs/*/progress", handler.GetRunProgress)
	r.GET("/api/v1/runs/*/files", handler.GetRunFiles)
	r.GET("/api/v1/runs/*/files/*", handler.DownloadRunFile)
	r.POST("/api/v1/runs/*/retry", handler.RetryRun)
	// Generic run route last
	r.GET("/api/v1/runs/*", handler.GetRun)

	r.Mount("/swagger/", httpSwagger.WrapHandler)
}
