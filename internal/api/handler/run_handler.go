package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"go-title-enrich/internal/model"
	"go-title-enrich/internal/pipeline"
	"go-title-enrich/internal/source/boxoffice"
	"go-title-enrich/internal/source/imdb"
	"go-title-enrich/internal/store"
	"go-title-enrich/pkg/utils"
)

const runsPrefix = "/api/v1/runs/"

// runIDFromPath slices the run id out of paths like /api/v1/runs/{id}/errors.
func runIDFromPath(path, suffix string) (string, bool) {
	if !strings.HasPrefix(path, runsPrefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	id := path[len(runsPrefix) : len(path)-len(suffix)]
	return id, id != ""
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// CreateRun creates and starts a pipeline run
// @Summary Create a new run
// @Description Start an ingest, enrich, partition, combine or boxoffice run over a data directory
// @Tags runs
// @Accept json
// @Produce json
// @Param run body model.RunSpec true "Run specification"
// @Success 200 {object} map[string]interface{} "Run created"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [post]
func CreateRun(w http.ResponseWriter, r *http.Request) {
	var spec model.RunSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if spec.DataDir == "" {
		http.Error(w, "dataDir is required", http.StatusBadRequest)
		return
	}
	switch spec.Kind {
	case model.RunIngest:
		if spec.Input == "" {
			http.Error(w, "input is required for ingest runs", http.StatusBadRequest)
			return
		}
	case model.RunEnrich, model.RunPartition, model.RunCombine, model.RunBoxOffice:
	default:
		http.Error(w, fmt.Sprintf("unknown run kind %q", spec.Kind), http.StatusBadRequest)
		return
	}

	runID := uuid.New().String()
	if err := store.SaveRun(runID, spec); err != nil {
		http.Error(w, "Failed to save run", http.StatusInternalServerError)
		return
	}

	go executeRun(runID, spec)

	writeJSON(w, map[string]interface{}{
		"message": "Run created successfully!",
		"runID":   runID,
		"status":  "pending",
	})
}

// executeRun drives one run in the background and keeps its status current.
func executeRun(runID string, spec model.RunSpec) {
	store.UpdateRunStatus(runID, "running")
	if err := runStage(context.Background(), runID, spec); err != nil {
		fmt.Printf("❌ Run %s failed: %v\n", runID, err)
		store.UpdateRunStatus(runID, "failed")
		store.SaveRunError(runID, err)
		return
	}
	store.UpdateRunStatus(runID, "completed")
}

func runStage(ctx context.Context, runID string, spec model.RunSpec) error {
	paths := pipeline.DefaultPaths(spec.DataDir)
	if err := paths.Ensure(); err != nil {
		return err
	}

	switch spec.Kind {
	case model.RunIngest:
		if _, err := pipeline.Ingest(ctx, spec.Input, paths); err != nil {
			return err
		}
		_, err := pipeline.RunAggregate(paths)
		return err

	case model.RunEnrich:
		client := imdb.New()
		e := pipeline.NewEnricher(client, paths)
		e.Limit = spec.Limit
		e.Checkpoint = func(cursor int, totals model.Counters) {
			store.SaveCheckpoint(spec.DataDir, cursor)
			store.SaveRunProgress(runID, totals)
		}
		totals, err := e.Run(ctx)
		store.SaveRunProgress(runID, totals)
		return err

	case model.RunPartition:
		counters, err := pipeline.Partition(paths, imdb.New().Name())
		store.SaveRunProgress(runID, counters)
		return err

	case model.RunCombine:
		_, err := pipeline.Combine(paths)
		return err

	case model.RunBoxOffice:
		_, err := pipeline.RunBoxOffice(ctx, boxoffice.New(), paths, spec.Limit)
		return err
	}
	return fmt.Errorf("unknown run kind %q", spec.Kind)
}

// ListRuns lists all runs
// @Summary List runs
// @Description Get all runs with their current status
// @Tags runs
// @Produce json
// @Success 200 {array} map[string]interface{} "List of runs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [get]
func ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns()
	if err != nil {
		http.Error(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, runs)
}

// GetRun fetches one run
// @Summary Get run
// @Description Retrieve the spec and status of one run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run details"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id} [get]
func GetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}
	run, err := store.GetRun(runID)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, run)
}

// GetRunErrors lists the errors of one run
// @Summary Get run errors
// @Description Retrieve every error recorded during a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run errors"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Router /runs/{id}/errors [get]
func GetRunErrors(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "/errors")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}
	errors, err := store.GetRunErrors(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"run_id": runID,
		"errors": errors,
		"count":  len(errors),
	})
}

// GetRunProgress reports counters and the resume cursor for one run
// @Summary Get run progress
// @Description Latest counters plus the resume cursor of the run's data directory
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run progress"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id}/progress [get]
func GetRunProgress(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "/progress")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}
	run, err := store.GetRun(runID)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	spec := run["spec"].(model.RunSpec)

	counters, hasCounters, err := store.GetRunProgress(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve progress", http.StatusInternalServerError)
		return
	}
	cursor, hasCheckpoint, err := store.GetCheckpoint(spec.DataDir)
	if err != nil {
		http.Error(w, "Failed to retrieve checkpoint", http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{
		"run_id": runID,
		"status": run["status"],
	}
	if hasCounters {
		resp["counters"] = counters
	}
	if hasCheckpoint {
		resp["resumeCursor"] = cursor
	}
	writeJSON(w, resp)
}

// RetryRun starts a new run with the same spec
// @Summary Retry run
// @Description Re-run a run's spec; enrichment resumes from the manifest, not from scratch
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Retry initiated"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id}/retry [post]
func RetryRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "/retry")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}
	run, err := store.GetRun(runID)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	spec := run["spec"].(model.RunSpec)

	newID := uuid.New().String()
	if err := store.SaveRun(newID, spec); err != nil {
		http.Error(w, "Failed to save run", http.StatusInternalServerError)
		return
	}
	go executeRun(newID, spec)

	writeJSON(w, map[string]interface{}{
		"message":  "Retry initiated",
		"run_id":   newID,
		"retry_of": runID,
		"status":   "pending",
	})
}

// GetRunFiles lists the artifacts in a run's data directory
// @Summary List run files
// @Description List every file the run's data directory currently holds
// @Tags files
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "File list"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id}/files [get]
func GetRunFiles(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "/files")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}
	run, err := store.GetRun(runID)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	spec := run["spec"].(model.RunSpec)

	files, err := utils.NewOutputManager(spec.DataDir).ListFiles()
	if err != nil {
		http.Error(w, "Failed to list files", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"run_id": runID,
		"files":  files,
		"count":  len(files),
	})
}

// DownloadRunFile serves one artifact for download
// @Summary Download run file
// @Description Download a single file from a run's data directory
// @Tags files
// @Produce application/octet-stream
// @Param id path string true "Run ID"
// @Param path path string true "Relative file path"
// @Success 200 {file} file "File download"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /runs/{id}/files/{path} [get]
func DownloadRunFile(w http.ResponseWriter, r *http.Request) {
	rest, ok := runIDFromPath(r.URL.Path, "")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}
	parts := strings.SplitN(rest, "/files/", 2)
	if len(parts) != 2 || parts[1] == "" {
		http.Error(w, "File path is required", http.StatusBadRequest)
		return
	}
	runID, relPath := parts[0], parts[1]

	run, err := store.GetRun(runID)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	spec := run["spec"].(model.RunSpec)

	full, err := utils.NewOutputManager(spec.DataDir).ResolveFile(relPath)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", relPath))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, full)
}
