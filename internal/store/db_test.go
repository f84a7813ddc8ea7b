package store

import (
	"errors"
	"path/filepath"
	"testing"

	"go-title-enrich/internal/model"
)

func initTestDB(t *testing.T) {
	t.Helper()
	if err := InitDB(filepath.Join(t.TempDir(), "tracking.db")); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
}

func TestRunLifecycle(t *testing.T) {
	initTestDB(t)

	spec := model.RunSpec{Kind: model.RunEnrich, DataDir: "/tmp/data"}
	if err := SaveRun("run-1", spec); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := UpdateRunStatus("run-1", "running"); err != nil {
		t.Fatalf("UpdateRunStatus: %v", err)
	}
	if err := SaveRunError("run-1", errors.New("boom")); err != nil {
		t.Fatalf("SaveRunError: %v", err)
	}

	run, err := GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run["status"] != "running" {
		t.Errorf("status = %v", run["status"])
	}
	got := run["spec"].(model.RunSpec)
	if got.Kind != model.RunEnrich || got.DataDir != "/tmp/data" {
		t.Errorf("spec = %+v", got)
	}

	runs, err := ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("runs = %d, want 1", len(runs))
	}

	runErrs, err := GetRunErrors("run-1")
	if err != nil {
		t.Fatalf("GetRunErrors: %v", err)
	}
	if len(runErrs) != 1 || runErrs[0]["message"] != "boom" {
		t.Errorf("errors = %+v", runErrs)
	}
}

func TestCheckpointUpsert(t *testing.T) {
	initTestDB(t)

	if _, ok, err := GetCheckpoint("/tmp/data"); err != nil || ok {
		t.Fatalf("GetCheckpoint on empty store: ok=%v err=%v", ok, err)
	}
	if err := SaveCheckpoint("/tmp/data", 30); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}
	if err := SaveCheckpoint("/tmp/data", 60); err != nil {
		t.Fatalf("SaveCheckpoint update: %v", err)
	}

	cursor, ok, err := GetCheckpoint("/tmp/data")
	if err != nil || !ok {
		t.Fatalf("GetCheckpoint: ok=%v err=%v", ok, err)
	}
	if cursor != 60 {
		t.Errorf("cursor = %d, want 60", cursor)
	}
}

func TestRunProgress(t *testing.T) {
	initTestDB(t)

	if err := SaveRun("run-2", model.RunSpec{Kind: model.RunEnrich}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	counters := model.Counters{Processed: 30, Success: 25, NoResult: 5}
	if err := SaveRunProgress("run-2", counters); err != nil {
		t.Fatalf("SaveRunProgress: %v", err)
	}

	got, ok, err := GetRunProgress("run-2")
	if err != nil || !ok {
		t.Fatalf("GetRunProgress: ok=%v err=%v", ok, err)
	}
	if got != counters {
		t.Errorf("counters = %+v, want %+v", got, counters)
	}
}
