package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mediakeeper/internal/cleaner"
	"mediakeeper/internal/config"
	"mediakeeper/internal/journal"
	"mediakeeper/internal/ledger"
	"mediakeeper/internal/logging"
	"mediakeeper/internal/resolver"
	"mediakeeper/internal/services/douban"
	"mediakeeper/internal/services/transmission"
	"mediakeeper/internal/throttle"
	"mediakeeper/internal/walker"
)

const (
	pipelineEnrich = "enrich"
	pipelineClean  = "clean"
)

// runEnrichPass performs one walker pass. The ledger lock is held only for
// the duration of the pass so scheduled runs release it between ticks.
func runEnrichPass(ctx context.Context, cfg *config.Config, logger *slog.Logger, store *journal.Store) (walker.Summary, error) {
	led, err := ledger.Open(cfg.Paths.LedgerFile)
	if err != nil {
		if errors.Is(err, ledger.ErrLocked) {
			return walker.Summary{}, fmt.Errorf("another enrich run is active: %w", err)
		}
		return walker.Summary{}, fmt.Errorf("open ledger: %w", err)
	}
	defer led.Close()

	client, err := douban.New(douban.Config{
		APIKey:     cfg.Douban.APIKey,
		Cookie:     cfg.Douban.Cookie,
		APIBaseURL: cfg.Douban.APIBaseURL,
		SuggestURL: cfg.Douban.SuggestURL,
		Timeout:    cfg.DoubanTimeout(),
	})
	if err != nil {
		return walker.Summary{}, fmt.Errorf("douban client: %w", err)
	}
	pacer := throttle.New(cfg.MinDelay(), cfg.MaxDelay(), throttle.WithLogger(logger))

	var recorder walker.Recorder
	if store != nil {
		recorder = store
	}
	runner := walker.NewRunner(walker.Options{
		Root: cfg.MediaDir.Directory,
		Rules: walker.Rules{
			ExcludeDirs:            cfg.ExcludeDirs(),
			ExcludedFilenames:      cfg.ExcludedFilenames(),
			ExcludedSubdirKeywords: cfg.ExcludedSubdirKeywords(),
		},
		Resolver: resolver.New(client, pacer, logger),
		Ledger:   led,
		Journal:  recorder,
		Pacer:    pacer,
		Logger:   logger,
	})
	return runner.Run(ctx)
}

// runCleanPass performs one cleaner pass against the configured daemon.
func runCleanPass(ctx context.Context, cfg *config.Config, logger *slog.Logger, store *journal.Store, dryRun bool) (cleaner.Result, error) {
	client, err := transmission.New(transmission.Config{
		Endpoint:       cfg.RPCEndpoint(),
		Username:       cfg.DownloadMgmt.Username,
		Password:       cfg.DownloadMgmt.Password,
		SessionRetries: cfg.DownloadMgmt.SessionRetries,
		Timeout:        cfg.RPCTimeout(),
	})
	if err != nil {
		return cleaner.Result{}, fmt.Errorf("transmission client: %w", err)
	}

	var recorder cleaner.Recorder
	if store != nil {
		recorder = store
	}
	return cleaner.New(cleaner.Options{
		Client:  client,
		Journal: recorder,
		DryRun:  dryRun,
		Logger:  logger,
	}).Run(ctx)
}

// openJournalOrWarn returns nil when the history database is unavailable.
func openJournalOrWarn(ctx *commandContext, logger *slog.Logger) *journal.Store {
	store, err := ctx.openJournal()
	if err != nil {
		logging.WarnWithContext(logger, "history journal unavailable", "journal_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history will not be recorded"),
			logging.String(logging.FieldErrorHint, "check paths.state_dir permissions"),
		)
		return nil
	}
	return store
}
