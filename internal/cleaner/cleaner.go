// Package cleaner removes stopped download tasks, with their data, from the
// Transmission daemon.
package cleaner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"mediakeeper/internal/journal"
	"mediakeeper/internal/logging"
	"mediakeeper/internal/services"
	"mediakeeper/internal/services/transmission"
)

// Outcomes recorded in the journal for each task.
const (
	OutcomeRemoved = "removed"
	OutcomeDryRun  = "dry_run"
)

// Client is the subset of the RPC client used by the cleaner.
type Client interface {
	Torrents(ctx context.Context) ([]transmission.Torrent, error)
	Remove(ctx context.Context, id int64, deleteLocalData bool) error
}

// Recorder persists per-task history.
type Recorder interface {
	RecordRemoval(ctx context.Context, r journal.Removal) error
}

// Options wires a Cleaner.
type Options struct {
	Client  Client
	Journal Recorder
	DryRun  bool
	Logger  *slog.Logger
}

// Result summarises one pass.
type Result struct {
	Listed     int
	Candidates []transmission.Torrent
	Removed    int
	Failed     int
	DryRun     bool
}

// Cleaner performs cleanup passes.
type Cleaner struct {
	client  Client
	journal Recorder
	dryRun  bool
	logger  *slog.Logger
}

// New constructs a Cleaner.
func New(opts Options) *Cleaner {
	return &Cleaner{
		client:  opts.Client,
		journal: opts.Journal,
		dryRun:  opts.DryRun,
		logger:  logging.NewComponentLogger(opts.Logger, "cleaner"),
	}
}

// Run lists every task and removes the stopped ones one at a time. A failed
// removal is logged and recorded without stopping the remaining removals.
func (c *Cleaner) Run(ctx context.Context) (Result, error) {
	logger := logging.WithContext(ctx, c.logger)
	result := Result{DryRun: c.dryRun}

	torrents, err := c.client.Torrents(ctx)
	if err != nil {
		logging.ErrorWithContext(logger, "task listing failed", "transmission_list_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check download_mgmt.download_mgmt_url and that the daemon is running"),
		)
		return result, fmt.Errorf("list tasks: %w", err)
	}
	result.Listed = len(torrents)
	if len(torrents) == 0 {
		logger.Info("task list is empty")
		return result, nil
	}

	for _, t := range torrents {
		logger.Debug("task listed",
			logging.Int64(logging.FieldTorrentID, t.ID),
			logging.String("name", t.Name),
			logging.String("status", transmission.StatusLabel(t.Status)),
			logging.String("progress", fmt.Sprintf("%.0f%%", t.PercentDone*100)),
			logging.String("down", rate(t.RateDownload)),
			logging.String("up", rate(t.RateUpload)),
		)
		if t.Stopped() {
			result.Candidates = append(result.Candidates, t)
		}
	}

	for _, t := range result.Candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		taskLogger := logger.With(
			logging.Int64(logging.FieldTorrentID, t.ID),
			logging.String("name", t.Name),
		)
		if c.dryRun {
			taskLogger.Info("would remove stopped task")
			c.record(ctx, taskLogger, t, OutcomeDryRun, "")
			continue
		}
		if err := c.client.Remove(ctx, t.ID, true); err != nil {
			result.Failed++
			logging.ErrorWithContext(taskLogger, "task removal failed", "transmission_remove_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "retry on the next pass or remove the task manually"),
			)
			c.record(ctx, taskLogger, t, services.Outcome(err), err.Error())
			continue
		}
		result.Removed++
		taskLogger.Info("task removed with local data")
		c.record(ctx, taskLogger, t, OutcomeRemoved, "")
	}

	logger.Info("cleanup pass complete",
		logging.Int("listed", result.Listed),
		logging.Int("stopped", len(result.Candidates)),
		logging.Int("removed", result.Removed),
		logging.Int("failed", result.Failed),
		logging.Bool("dry_run", c.dryRun),
	)
	return result, nil
}

func (c *Cleaner) record(ctx context.Context, logger *slog.Logger, t transmission.Torrent, outcome, detail string) {
	if c.journal == nil {
		return
	}
	entry := journal.Removal{TaskID: t.ID, Name: t.Name, Outcome: outcome, Detail: detail}
	if id, ok := services.RunIDFromContext(ctx); ok {
		entry.RunID = id
	}
	if err := c.journal.RecordRemoval(context.WithoutCancel(ctx), entry); err != nil {
		logging.WarnWithContext(logger, "history write failed", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history incomplete"),
		)
	}
}

func rate(bytesPerSecond int64) string {
	if bytesPerSecond <= 0 {
		return "0 B/s"
	}
	return humanize.Bytes(uint64(bytesPerSecond)) + "/s"
}
