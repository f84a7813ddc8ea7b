package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go-title-enrich/internal/match"
	"go-title-enrich/internal/model"
	"go-title-enrich/internal/source"
)

const (
	// DefaultBatchSize is how many records one batch resolves before the
	// pipeline pauses, reports progress and checkpoints.
	DefaultBatchSize = 30
	// DefaultConcurrentRequests bounds in-flight source requests per batch.
	DefaultConcurrentRequests = 10
)

// Enricher drives the resumable enrichment stage: it reads the sorted
// record file, skips everything the manifest already covers, and resolves
// the rest against the external source in batches.
type Enricher struct {
	Client     source.Client
	Paths      Paths
	Policy     RetryPolicy
	BatchSize  int
	Concurrent int
	Limit      int // stop after N records, 0 means all

	// Delay bounds between batches. Jitter keeps the request pattern from
	// looking mechanical to the source.
	MinBatchDelay time.Duration
	MaxBatchDelay time.Duration

	// Checkpoint, when set, is called after every batch with the next
	// resume cursor and the running totals.
	Checkpoint func(cursor int, totals model.Counters)

	gate cooldownGate
	rng  *rand.Rand
}

// NewEnricher returns an enricher with the standard batch sizing and retry
// policy.
func NewEnricher(client source.Client, paths Paths) *Enricher {
	return &Enricher{
		Client:        client,
		Paths:         paths,
		Policy:        DefaultRetryPolicy,
		BatchSize:     DefaultBatchSize,
		Concurrent:    DefaultConcurrentRequests,
		MinBatchDelay: 1 * time.Second,
		MaxBatchDelay: 3 * time.Second,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// runFiles bundles the append-only outputs of one enrichment run.
type runFiles struct {
	enriched      *lineWriter
	minimal       *lineWriter
	manifest      *lineWriter
	lowConfidence *lineWriter
	errors        *lineWriter
}

func openRunFiles(p Paths) (*runFiles, error) {
	rf := &runFiles{}
	var err error
	if rf.enriched, err = openLineWriter(p.Enriched); err != nil {
		return nil, err
	}
	if rf.minimal, err = openLineWriter(p.Minimal); err != nil {
		return nil, err
	}
	if rf.manifest, err = openLineWriter(p.Manifest); err != nil {
		return nil, err
	}
	if rf.lowConfidence, err = openLineWriter(p.LowConfidence); err != nil {
		return nil, err
	}
	if rf.errors, err = openLineWriter(p.Errors); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *runFiles) Close() {
	rf.enriched.Close()
	rf.minimal.Close()
	rf.manifest.Close()
	rf.lowConfidence.Close()
	rf.errors.Close()
}

// Run executes the stage until the input is exhausted, the limit is hit or
// the context is cancelled. Interrupting it at any point is safe: the next
// Run resumes from the manifest.
func (e *Enricher) Run(ctx context.Context) (model.Counters, error) {
	var totals model.Counters

	if err := e.Paths.Ensure(); err != nil {
		return totals, err
	}
	cursor, err := ResumeCursor(e.Paths.Manifest)
	if err != nil {
		return totals, err
	}

	records, err := readRecords(e.Paths.SortedRecords)
	if err != nil {
		return totals, err
	}

	var pending []model.ContentRecord
	for _, rec := range records {
		if rec.Meta.IndexNum < cursor {
			continue
		}
		pending = append(pending, rec)
	}
	if e.Limit > 0 && len(pending) > e.Limit {
		pending = pending[:e.Limit]
	}

	fmt.Printf("🚀 Starting enrichment: %d of %d records pending (cursor %d)\n", len(pending), len(records), cursor)
	if len(pending) == 0 {
		return totals, nil
	}

	files, err := openRunFiles(e.Paths)
	if err != nil {
		return totals, err
	}
	defer files.Close()

	batchSize := e.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	numBatches := (len(pending) + batchSize - 1) / batchSize

	start := time.Now()
	for b := 0; b < numBatches; b++ {
		if ctx.Err() != nil {
			return totals, ctx.Err()
		}

		lo := b * batchSize
		hi := lo + batchSize
		if hi > len(pending) {
			hi = len(pending)
		}
		batch := pending[lo:hi]

		counters := e.processBatch(ctx, batch, files)
		totals.Add(counters)

		fmt.Printf("📦 Batch %d/%d done: %d processed, %d success, %d low-confidence, %d no-result, %d errors\n",
			b+1, numBatches, counters.Processed, counters.Success, counters.LowConfidence,
			counters.NoResult, counters.Errors)

		if e.Checkpoint != nil {
			e.Checkpoint(batch[len(batch)-1].Meta.IndexNum+1, totals)
		}

		if b < numBatches-1 {
			if err := e.batchPause(ctx); err != nil {
				return totals, err
			}
		}
	}

	fmt.Printf("🏁 Enrichment completed: %d records in %v\n", totals.Processed, time.Since(start).Round(time.Millisecond))
	return totals, nil
}

// batchPause sleeps a random duration between the configured bounds.
func (e *Enricher) batchPause(ctx context.Context) error {
	d := e.MinBatchDelay
	if spread := e.MaxBatchDelay - e.MinBatchDelay; spread > 0 {
		d += time.Duration(e.rng.Int63n(int64(spread)))
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// processBatch resolves one batch with bounded concurrency and a strict
// barrier: every worker finishes before the batch reports.
func (e *Enricher) processBatch(ctx context.Context, batch []model.ContentRecord, files *runFiles) model.Counters {
	concurrent := e.Concurrent
	if concurrent <= 0 {
		concurrent = DefaultConcurrentRequests
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		counters model.Counters
	)
	sem := make(chan struct{}, concurrent)

	for i := range batch {
		wg.Add(1)
		sem <- struct{}{}
		go func(rec model.ContentRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			delta := e.processRecord(ctx, rec, files)
			mu.Lock()
			counters.Add(delta)
			mu.Unlock()
		}(batch[i])
	}

	wg.Wait()
	return counters
}

// processRecord takes one record through search, scoring and optional
// detail enrichment, and writes exactly one manifest entry for it.
func (e *Enricher) processRecord(ctx context.Context, rec model.ContentRecord, files *runFiles) model.Counters {
	delta := model.Counters{Processed: 1}

	if rec.Meta.CoreTitle == "" {
		delta.Errors++
		e.writeFailure(files, rec, model.StatusError, "record has no core title", 0)
		return delta
	}

	var cand *model.Candidate
	retries, err := e.Policy.Do(ctx, &e.gate, func() error {
		c, serr := e.Client.Search(ctx, rec.Meta.CoreTitle)
		if serr != nil {
			return serr
		}
		cand = c
		return nil
	})
	if err != nil {
		delta.Errors++
		e.writeFailure(files, rec, model.StatusError, fmt.Sprintf("search failed: %v", err), retries)
		return delta
	}
	if cand == nil {
		delta.NoResult++
		e.writeFailure(files, rec, model.StatusNoResult, "source returned no result", retries)
		return delta
	}

	confidence := match.Score(rec.Meta.CoreTitle, cand.MatchedTitle)
	payload := model.SourcePayload{
		MatchedTitle:    cand.MatchedTitle,
		MatchConfidence: confidence,
		SourceLink:      cand.SourceLink,
		Details: model.Detail{
			Title: cand.MatchedTitle,
			Dates: cand.Dates,
			Type:  cand.TypeHint,
		},
	}

	if !match.Enrichable(confidence) {
		delta.LowConfidence++
		fmt.Printf("🔍 Low confidence %.2f for %q (matched %q)\n", confidence, rec.Meta.CoreTitle, cand.MatchedTitle)
		e.writeMatch(files, rec, payload, model.StatusLowConfidence, files.lowConfidence)
		return delta
	}

	var detail *model.Detail
	retries, err = e.Policy.Do(ctx, &e.gate, func() error {
		d, derr := e.Client.FetchDetail(ctx, cand.SourceLink)
		if derr != nil {
			return derr
		}
		detail = d
		return nil
	})
	if err != nil {
		delta.Errors++
		e.writeFailure(files, rec, model.StatusError, fmt.Sprintf("detail fetch failed: %v", err), retries)
		return delta
	}

	var credits model.CreditGroups
	retries, err = e.Policy.Do(ctx, &e.gate, func() error {
		c, cerr := e.Client.FetchCredits(ctx, cand.SourceLink)
		if cerr != nil {
			return cerr
		}
		credits = c
		return nil
	})
	if err != nil {
		delta.Errors++
		e.writeFailure(files, rec, model.StatusError, fmt.Sprintf("credits fetch failed: %v", err), retries)
		return delta
	}

	payload.Details = *detail
	if payload.Details.Type == "" {
		payload.Details.Type = cand.TypeHint
	}
	payload.Credits = credits

	delta.Success++
	e.writeMatch(files, rec, payload, model.StatusSuccess, files.enriched)
	return delta
}

// writeMatch lands a matched record in its stream plus the manifest and the
// minimal audit projection.
func (e *Enricher) writeMatch(files *runFiles, rec model.ContentRecord, payload model.SourcePayload, status model.MatchStatus, dest *lineWriter) {
	if err := rec.SetSource(e.Client.Name(), payload); err != nil {
		fmt.Printf("❌ Failed to attach %s payload for index %d: %v\n", e.Client.Name(), rec.Meta.IndexNum, err)
	}
	if err := dest.Append(rec); err != nil {
		fmt.Printf("❌ Failed to write record %d: %v\n", rec.Meta.IndexNum, err)
	}
	e.appendAudit(files, rec, status, payload.MatchConfidence, payload.SourceLink, payload.MatchedTitle, payload.Details)
}

// writeFailure lands a failed or unmatched record in the error stream with
// the original record echoed for offline reprocessing.
func (e *Enricher) writeFailure(files *runFiles, rec model.ContentRecord, status model.MatchStatus, message string, retries int) {
	fmt.Printf("❌ %s at index %d (%s): %s\n", status, rec.Meta.IndexNum, rec.Meta.CoreTitle, message)
	errRec := model.ErrorRecord{
		IndexNum:   rec.Meta.IndexNum,
		CoreTitle:  rec.Meta.CoreTitle,
		Status:     status,
		Message:    message,
		RetryCount: retries,
		Record:     &rec,
	}
	if err := files.errors.Append(errRec); err != nil {
		fmt.Printf("❌ Failed to write error record %d: %v\n", rec.Meta.IndexNum, err)
	}
	e.appendAudit(files, rec, status, 0, "", "", model.Detail{})
}

func (e *Enricher) appendAudit(files *runFiles, rec model.ContentRecord, status model.MatchStatus, confidence float64, link, matched string, detail model.Detail) {
	entry := model.ManifestEntry{
		Status:          status,
		IndexNum:        rec.Meta.IndexNum,
		CoreTitle:       rec.Meta.CoreTitle,
		MatchConfidence: confidence,
		SourceLink:      link,
	}
	if err := files.manifest.Append(entry); err != nil {
		fmt.Printf("❌ Failed to write manifest entry %d: %v\n", rec.Meta.IndexNum, err)
	}

	min := model.MinimalRecord{
		Status:          status,
		IndexNum:        rec.Meta.IndexNum,
		CoreTitle:       rec.Meta.CoreTitle,
		SourceLink:      link,
		MatchedTitle:    matched,
		MatchConfidence: confidence,
		ReleaseDate:     detail.Dates,
		Type:            detail.Type,
	}
	if err := files.minimal.Append(min); err != nil {
		fmt.Printf("❌ Failed to write minimal record %d: %v\n", rec.Meta.IndexNum, err)
	}
}
