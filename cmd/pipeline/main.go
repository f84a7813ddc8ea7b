package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"go-title-enrich/internal/model"
	"go-title-enrich/internal/pipeline"
	"go-title-enrich/internal/source/boxoffice"
	"go-title-enrich/internal/source/imdb"
	"go-title-enrich/internal/store"
)

var (
	dataDir string
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Viewing-history title enrichment pipeline",
	Long: `Runs the stages of the title enrichment pipeline over a data
directory: ingest a viewing report, enrich titles against the external
source, partition the results and combine films with box-office data.

Every stage is resumable; interrupting a run and starting it again picks
up where the manifest left off.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return store.InitDB(dbPath)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "data", "data directory for all pipeline files")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "enrich.db", "tracking database path")

	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(enrichCmd())
	rootCmd.AddCommand(partitionCmd())
	rootCmd.AddCommand(combineCmd())
	rootCmd.AddCommand(boxOfficeCmd())
	rootCmd.AddCommand(statusCmd())
}

// withRun wraps a stage in a tracked run, a data-dir lock and signal-aware
// cancellation. Only one writing process may own a data directory at a time.
func withRun(kind model.RunKind, fn func(ctx context.Context, runID string, paths pipeline.Paths) error) error {
	paths := pipeline.DefaultPaths(dataDir)
	if err := paths.Ensure(); err != nil {
		return err
	}

	lock := flock.New(filepath.Join(dataDir, ".pipeline.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire data-dir lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another pipeline process is using %s", dataDir)
	}
	defer lock.Unlock()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.New().String()
	spec := model.RunSpec{Kind: kind, DataDir: dataDir}
	if err := store.SaveRun(runID, spec); err != nil {
		return err
	}
	store.UpdateRunStatus(runID, "running")

	if err := fn(ctx, runID, paths); err != nil {
		store.UpdateRunStatus(runID, "failed")
		store.SaveRunError(runID, err)
		return err
	}
	store.UpdateRunStatus(runID, "completed")
	return nil
}

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <report.csv>",
		Short: "Ingest a viewing report CSV and build the sorted record file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRun(model.RunIngest, func(ctx context.Context, runID string, paths pipeline.Paths) error {
				if _, err := pipeline.Ingest(ctx, args[0], paths); err != nil {
					return err
				}
				_, err := pipeline.RunAggregate(paths)
				return err
			})
		},
	}
}

func enrichCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Resolve sorted records against the external source, resuming from the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRun(model.RunEnrich, func(ctx context.Context, runID string, paths pipeline.Paths) error {
				e := pipeline.NewEnricher(imdb.New(), paths)
				e.Limit = limit
				e.Checkpoint = func(cursor int, totals model.Counters) {
					store.SaveCheckpoint(dataDir, cursor)
					store.SaveRunProgress(runID, totals)
				}
				totals, err := e.Run(ctx)
				store.SaveRunProgress(runID, totals)
				printCounters(totals)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many records (0 = all)")
	return cmd
}

func partitionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "partition",
		Short: "Split enriched records into clean, low-confidence and category partitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRun(model.RunPartition, func(ctx context.Context, runID string, paths pipeline.Paths) error {
				counters, err := pipeline.Partition(paths, imdb.New().Name())
				store.SaveRunProgress(runID, counters)
				printCounters(counters)
				return err
			})
		},
	}
}

func combineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "combine",
		Short: "Join the film partition with scraped box-office budget rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRun(model.RunCombine, func(ctx context.Context, runID string, paths pipeline.Paths) error {
				_, err := pipeline.Combine(paths)
				return err
			})
		},
	}
}

func boxOfficeCmd() *cobra.Command {
	var maxPages int
	cmd := &cobra.Command{
		Use:   "boxoffice",
		Short: "Scrape the production-budget table into the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRun(model.RunBoxOffice, func(ctx context.Context, runID string, paths pipeline.Paths) error {
				_, err := pipeline.RunBoxOffice(ctx, boxoffice.New(), paths, maxPages)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages (0 = until empty)")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the resume cursor and recent runs for the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := pipeline.DefaultPaths(dataDir)
			cursor, err := pipeline.ResumeCursor(paths.Manifest)
			if err != nil {
				return err
			}
			checkpoint, hasCheckpoint, err := store.GetCheckpoint(dataDir)
			if err != nil {
				return err
			}
			fmt.Printf("Manifest cursor: %d\n", cursor)
			if hasCheckpoint {
				fmt.Printf("Checkpoint:      %d\n", checkpoint)
			}

			runs, err := store.ListRuns()
			if err != nil {
				return err
			}
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Run", "Kind", "Status", "Updated"})
			for _, run := range runs {
				t.AppendRow(table.Row{run["id"], run["kind"], run["status"], run["updatedAt"]})
			}
			t.Render()
			return nil
		},
	}
}

func printCounters(c model.Counters) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Outcome", "Count"})
	t.AppendRows([]table.Row{
		{"processed", c.Processed},
		{"success", c.Success},
		{"low-confidence", c.LowConfidence},
		{"no-result", c.NoResult},
		{"errors", c.Errors},
	})
	if c.Film+c.TV+c.Other > 0 {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"film", c.Film},
			{"tv", c.TV},
			{"other", c.Other},
		})
	}
	t.Render()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
