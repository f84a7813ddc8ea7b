package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"go-title-enrich/internal/model"
)

var db *sql.DB

// InitDB opens the tracking database and creates the schema. The database
// only tracks run metadata; record data lives in the JSONL files.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	runTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT,
		spec TEXT,
		status TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`
	progressTable := `
	CREATE TABLE IF NOT EXISTS run_progress (
		run_id TEXT PRIMARY KEY,
		counters TEXT,
		updated_at DATETIME
	);
	`
	checkpointTable := `
	CREATE TABLE IF NOT EXISTS checkpoints (
		data_dir TEXT PRIMARY KEY,
		resume_cursor INTEGER,
		updated_at DATETIME
	);
	`

	for _, stmt := range []string{runTable, errorTable, progressTable, checkpointTable} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun stores a new run in pending state.
func SaveRun(runID string, spec model.RunSpec) error {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO runs (id, kind, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, string(spec.Kind), specJSON, "pending", now, now)
	return err
}

// UpdateRunStatus moves a run through pending/running/completed/failed.
func UpdateRunStatus(runID string, status string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, runID)
	return err
}

// SaveRunError records an error for a run.
func SaveRunError(runID string, runErr error) error {
	if runErr == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`,
		runID, runErr.Error(), now)
	return err
}

// SaveRunProgress upserts the latest counters for a run.
func SaveRunProgress(runID string, counters model.Counters) error {
	countersJSON, err := json.Marshal(counters)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO run_progress (run_id, counters, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET counters = excluded.counters, updated_at = excluded.updated_at`,
		runID, string(countersJSON), now)
	return err
}

// GetRunProgress returns the latest counters for a run, or false when the
// run has not reported yet.
func GetRunProgress(runID string) (model.Counters, bool, error) {
	var countersJSON string
	err := db.QueryRow(`SELECT counters FROM run_progress WHERE run_id = ?`, runID).Scan(&countersJSON)
	if err == sql.ErrNoRows {
		return model.Counters{}, false, nil
	}
	if err != nil {
		return model.Counters{}, false, err
	}
	var counters model.Counters
	if err := json.Unmarshal([]byte(countersJSON), &counters); err != nil {
		return model.Counters{}, false, err
	}
	return counters, true, nil
}

// SaveCheckpoint upserts the resume cursor for a data directory. The
// manifest stays the source of truth; the checkpoint is the fast path that
// saves a full manifest scan on restart.
func SaveCheckpoint(dataDir string, cursor int) error {
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO checkpoints (data_dir, resume_cursor, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(data_dir) DO UPDATE SET resume_cursor = excluded.resume_cursor, updated_at = excluded.updated_at`,
		dataDir, cursor, now)
	return err
}

// GetCheckpoint returns the stored resume cursor for a data directory, or
// false when none was recorded.
func GetCheckpoint(dataDir string) (int, bool, error) {
	var cursor int
	err := db.QueryRow(`SELECT resume_cursor FROM checkpoints WHERE data_dir = ?`, dataDir).Scan(&cursor)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return cursor, true, nil
}

// ListRuns returns all runs, newest first.
func ListRuns() ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT id, kind, status, created_at, updated_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []map[string]interface{}
	for rows.Next() {
		var id, kind, status string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &kind, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, map[string]interface{}{
			"id":        id,
			"kind":      kind,
			"status":    status,
			"createdAt": createdAt,
			"updatedAt": updatedAt,
		})
	}
	return runs, rows.Err()
}

// GetRun fetches the full spec and status of one run.
func GetRun(runID string) (map[string]interface{}, error) {
	var specJSON, status string
	var createdAt, updatedAt time.Time

	err := db.QueryRow(`SELECT spec, status, created_at, updated_at FROM runs WHERE id = ?`, runID).
		Scan(&specJSON, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var spec model.RunSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"id":        runID,
		"spec":      spec,
		"status":    status,
		"createdAt": createdAt,
		"updatedAt": updatedAt,
	}, nil
}

// GetRunErrors returns the recorded errors for a run, oldest first.
func GetRunErrors(runID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT error_message, created_at FROM run_errors WHERE run_id = ? ORDER BY created_at`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errors []map[string]interface{}
	for rows.Next() {
		var message string
		var createdAt time.Time
		if err := rows.Scan(&message, &createdAt); err != nil {
			return nil, err
		}
		errors = append(errors, map[string]interface{}{
			"message":   message,
			"createdAt": createdAt,
		})
	}
	return errors, rows.Err()
}
