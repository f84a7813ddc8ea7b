package main

import (
	"go-title-enrich/internal/api"
	"go-title-enrich/internal/store"
	"go-title-enrich/pkg/router"
)

// @title Title Enrichment Pipeline API
// @version 1.0
// @description Monitoring and control API for the viewing-history enrichment pipeline.
// @BasePath /api/v1
func main() {
	// Init DB
	if err := store.InitDB("enrich.db"); err != nil {
		panic(err)
	}

	// Create router
	r := router.New()

	// Register API routes
	api.RegisterRoutes(r)

	// Start server
	r.Start(":8080")
}
