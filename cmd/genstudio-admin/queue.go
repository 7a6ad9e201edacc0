package main

import (
	"flag"
	"os"
	"text/tabwriter"
	"time"

	"github.com/openpalette/genstudio/internal/data"
	"github.com/openpalette/genstudio/internal/util"
)

func runQueueStats(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("queue-stats", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := connectDB(cmdCtx.Logger, &cmdCtx.Config)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx.Logger, db)

	repo := data.NewJobRepo(db, data.JobRepoConfig{Logger: cmdCtx.Logger})
	stats, err := repo.Stats(cmdCtx.Ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "pending\t%d\n", stats.TotalPending); err != nil {
		return err
	}
	if err := writef(w, "processing\t%d\n", stats.ProcessingCount); err != nil {
		return err
	}
	avg := time.Duration(stats.AverageProcessingTimeMillis) * time.Millisecond
	if err := writef(w, "avg processing\t%s\n", util.FormatProcessingDuration(avg)); err != nil {
		return err
	}
	wait := time.Duration(stats.EstimatedWaitMillis) * time.Millisecond
	if err := writef(w, "estimated wait\t%s\n", util.FormatProcessingDuration(wait)); err != nil {
		return err
	}
	return w.Flush()
}

func runSweep(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	batchSize := fs.Int("batch-size", cmdCtx.Config.Sweeper.BatchSize, "rows per maintenance operation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := connectDB(cmdCtx.Logger, &cmdCtx.Config)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx.Logger, db)

	repo := data.NewJobRepo(db, data.JobRepoConfig{Logger: cmdCtx.Logger})

	timedOut, err := repo.TimeoutOverdueJobs(cmdCtx.Ctx, *batchSize)
	if err != nil {
		return err
	}
	deleted, err := repo.DeleteExpiredJobs(cmdCtx.Ctx, *batchSize)
	if err != nil {
		return err
	}
	repositioned, err := repo.RecomputePositions(cmdCtx.Ctx)
	if err != nil {
		return err
	}

	cmdCtx.Logger.InfoContext(cmdCtx.Ctx, "maintenance pass complete",
		"timed_out", len(timedOut),
		"deleted", deleted,
		"repositioned", repositioned,
	)
	return nil
}
