package walker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mediakeeper/internal/journal"
	"mediakeeper/internal/logging"
	"mediakeeper/internal/nfo"
	"mediakeeper/internal/services"
	"mediakeeper/internal/throttle"
)

// Outcomes recorded in the journal for each file.
const (
	OutcomeEnriched   = "enriched"
	OutcomeUnmatched  = "unmatched"
	OutcomeNoCredits  = "no_credits"
	OutcomeUnresolved = "unresolved"
	OutcomeSkipped    = "skipped"
	OutcomeFailed     = "failed"
)

// Resolver maps records to credits.
type Resolver interface {
	Resolve(ctx context.Context, record nfo.Record) []string
	FetchCredits(ctx context.Context, ids []string, mediaType nfo.MediaType) nfo.Credits
}

// Ledger is the processed-file store.
type Ledger interface {
	Membership
	Append(path string) error
}

// Recorder persists per-file history.
type Recorder interface {
	RecordEnrichment(ctx context.Context, e journal.Enrichment) error
}

// Summary counts the outcome of a run.
type Summary struct {
	Discovered int
	Skipped    int
	Unresolved int
	Unmatched  int
	Enriched   int
	Failed     int
	Duration   time.Duration
}

// Options wires a Runner.
type Options struct {
	Root     string
	Rules    Rules
	Resolver Resolver
	Ledger   Ledger
	Journal  Recorder
	Pacer    throttle.Pacer
	Logger   *slog.Logger
}

// Runner drives one enrichment pass.
type Runner struct {
	root     string
	rules    Rules
	resolver Resolver
	ledger   Ledger
	journal  Recorder
	pacer    throttle.Pacer
	logger   *slog.Logger
}

// NewRunner constructs a runner. Journal and Pacer are optional.
func NewRunner(opts Options) *Runner {
	pacer := opts.Pacer
	if pacer == nil {
		pacer = throttle.Nop{}
	}
	return &Runner{
		root:     opts.Root,
		rules:    opts.Rules,
		resolver: opts.Resolver,
		ledger:   opts.Ledger,
		journal:  opts.Journal,
		pacer:    pacer,
		logger:   logging.NewComponentLogger(opts.Logger, "walker"),
	}
}

// Run discovers and processes every pending sidecar. Per-file failures are
// logged and counted; only discovery failures and cancellation end the run early.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	logger := logging.WithContext(ctx, r.logger)

	var summary Summary
	paths, err := Discover(r.root, r.rules, r.ledger, logger)
	if err != nil {
		return summary, err
	}
	summary.Discovered = len(paths)
	logger.Info("scan complete",
		logging.String(logging.FieldPath, r.root),
		logging.Int("pending", len(paths)),
	)

	for idx, path := range paths {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(started)
			return summary, err
		}
		logger.Info("processing sidecar",
			logging.String(logging.FieldPath, path),
			logging.Int("index", idx+1),
			logging.Int("total", len(paths)),
		)

		outcome, paced := r.processFile(ctx, logger, path)
		switch outcome {
		case OutcomeEnriched:
			summary.Enriched++
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeUnresolved, OutcomeNoCredits:
			summary.Unresolved++
		case OutcomeUnmatched:
			summary.Unmatched++
		default:
			summary.Failed++
		}

		if paced {
			if err := r.pacer.Pause(ctx, "sidecar processed"); err != nil {
				summary.Duration = time.Since(started)
				return summary, err
			}
		}
	}

	summary.Duration = time.Since(started)
	logger.Info("enrichment pass complete",
		logging.Int("discovered", summary.Discovered),
		logging.Int("enriched", summary.Enriched),
		logging.Int("unmatched", summary.Unmatched),
		logging.Int("unresolved", summary.Unresolved),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", summary.Duration.Round(time.Second)),
	)
	return summary, nil
}

// processFile returns the outcome and whether the courtesy pause applies.
func (r *Runner) processFile(ctx context.Context, logger *slog.Logger, path string) (string, bool) {
	fileLogger := logger.With(logging.String(logging.FieldPath, path))

	record, err := nfo.Read(path)
	if err != nil {
		hint := "check that the file is a movie or tvshow document"
		if errors.Is(err, nfo.ErrNoTitle) {
			hint = "add a <title> element to the sidecar"
		}
		logging.WarnWithContext(fileLogger, "skipping sidecar", "nfo_unreadable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hint),
			logging.String(logging.FieldImpact, "file not enriched and not marked processed"),
		)
		r.record(ctx, fileLogger, journal.Enrichment{Path: path, Outcome: OutcomeSkipped, Detail: err.Error()})
		return OutcomeSkipped, false
	}

	entry := journal.Enrichment{
		Path:      path,
		MediaType: string(record.MediaType),
		Title:     record.Title,
		Year:      record.Year,
	}
	fileLogger.Info("sidecar parsed",
		logging.String("media_type", string(record.MediaType)),
		logging.String(logging.FieldTitle, record.Title),
		logging.String("year", record.Year),
		logging.String("imdb_id", record.IMDbID),
	)

	ids := r.resolver.Resolve(ctx, record)
	entry.SubjectIDs = ids
	if len(ids) == 0 {
		logging.WarnWithContext(fileLogger, "no douban subject resolved", "douban_unresolved",
			logging.String(logging.FieldImpact, "file left unprocessed; retried next run"),
		)
		entry.Outcome = OutcomeUnresolved
		r.record(ctx, fileLogger, entry)
		return OutcomeUnresolved, true
	}

	credits := r.resolver.FetchCredits(ctx, ids, record.MediaType)
	if credits.Empty() {
		entry.Outcome = OutcomeNoCredits
		r.record(ctx, fileLogger, entry)
		return OutcomeNoCredits, true
	}

	result, err := nfo.Merge(path, credits)
	entry.Directors = result.Directors
	entry.Actors = result.Actors
	if err != nil {
		logging.ErrorWithContext(fileLogger, "merge failed", "nfo_merge_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check file permissions on the media directory"),
		)
		entry.Outcome = OutcomeFailed
		entry.Detail = err.Error()
		r.record(ctx, fileLogger, entry)
		return OutcomeFailed, true
	}
	if result.Rewritten() == 0 {
		fileLogger.Info("no credits matched existing entries",
			logging.Int("directors_fetched", len(credits.Directors)),
			logging.Int("actors_fetched", len(credits.Actors)),
		)
		entry.Outcome = OutcomeUnmatched
		r.record(ctx, fileLogger, entry)
		return OutcomeUnmatched, true
	}

	if err := r.ledger.Append(path); err != nil {
		logging.ErrorWithContext(fileLogger, "ledger append failed", "ledger_append_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the ledger file is writable"),
		)
		entry.Outcome = OutcomeFailed
		entry.Detail = err.Error()
		r.record(ctx, fileLogger, entry)
		return OutcomeFailed, true
	}
	fileLogger.Info("sidecar enriched",
		logging.Int("directors", result.Directors),
		logging.Int("actors", result.Actors),
	)
	entry.Outcome = OutcomeEnriched
	r.record(ctx, fileLogger, entry)
	return OutcomeEnriched, true
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, entry journal.Enrichment) {
	if r.journal == nil {
		return
	}
	if id, ok := services.RunIDFromContext(ctx); ok {
		entry.RunID = id
	}
	if err := r.journal.RecordEnrichment(context.WithoutCancel(ctx), entry); err != nil {
		logging.WarnWithContext(logger, "history write failed", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history incomplete"),
		)
	}
}
