package model

// RunKind names one stage of the pipeline as triggered from the CLI or API.
type RunKind string

const (
	RunIngest    RunKind = "ingest"
	RunEnrich    RunKind = "enrich"
	RunPartition RunKind = "partition"
	RunCombine   RunKind = "combine"
	RunBoxOffice RunKind = "boxoffice"
)

// RunSpec is the struct for POST /api/v1/runs and the persisted run record.
type RunSpec struct {
	Kind    RunKind `json:"kind"`
	Input   string  `json:"input,omitempty"` // raw CSV path, ingest only
	DataDir string  `json:"dataDir"`
	Limit   int     `json:"limit,omitempty"` // stop after N records, 0 = all
}

// Counters is the explicit accumulator threaded through a run. Workers keep
// their own copy and merge into the run total at batch boundaries; nothing
// is tallied in package-level state.
type Counters struct {
	Processed     int `json:"processed"`
	Success       int `json:"success"`
	LowConfidence int `json:"lowConfidence"`
	NoResult      int `json:"noResult"`
	Errors        int `json:"errors"`
	Film          int `json:"film"`
	TV            int `json:"tv"`
	Other         int `json:"other"`
}

// Add merges another accumulator into this one.
func (c *Counters) Add(o Counters) {
	c.Processed += o.Processed
	c.Success += o.Success
	c.LowConfidence += o.LowConfidence
	c.NoResult += o.NoResult
	c.Errors += o.Errors
	c.Film += o.Film
	c.TV += o.TV
	c.Other += o.Other
}
