package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"mediakeeper/internal/logging"
	"mediakeeper/internal/notifications"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Rewrite NFO director and actor names using Douban",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateEnrich(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger, err := ctx.newLogger(cmd)
			if err != nil {
				return err
			}
			if !cfg.CookieConfigured() {
				logging.WarnWithContext(logger, "douban cookie not configured", "douban_cookie_missing",
					logging.String(logging.FieldImpact, "title searches may be rate limited or rejected"),
					logging.String(logging.FieldErrorHint, "set douban.cookie or DOUBAN_COOKIE"),
				)
			}

			store := openJournalOrWarn(ctx, logger)
			if store != nil {
				defer store.Close()
			}
			notifier := notifications.NewService(cfg)
			out := cmd.OutOrStdout()

			pass := func(parent context.Context) error {
				runCtx, runID := newRunContext(parent, pipelineEnrich)
				runLogger := logging.WithContext(runCtx, logger)
				runLogger.Info("enrichment pass starting", logging.String(logging.FieldPath, cfg.MediaDir.Directory))

				summary, err := runEnrichPass(runCtx, cfg, logger, store)
				if err != nil {
					notifyError(runCtx, runLogger, notifier, err, pipelineEnrich)
					return err
				}
				fmt.Fprintf(out, "Run %s: enriched %d of %d sidecars (unmatched %d, unresolved %d, skipped %d, failed %d)\n",
					shortRunID(runID), summary.Enriched, summary.Discovered, summary.Unmatched,
					summary.Unresolved, summary.Skipped, summary.Failed)
				if err := notifier.NotifyEnrichmentComplete(runCtx, notifications.EnrichmentSummary{
					Discovered: summary.Discovered,
					Enriched:   summary.Enriched,
					Unresolved: summary.Unresolved + summary.Unmatched,
					Skipped:    summary.Skipped,
					Failed:     summary.Failed,
					Duration:   summary.Duration,
				}); err != nil {
					warnNotify(runLogger, err)
				}
				return nil
			}

			if strings.TrimSpace(schedule) != "" {
				return runOnSchedule(cmd.Context(), schedule, logger, pass)
			}
			return pass(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "Repeat on a cron schedule (e.g. \"0 */6 * * *\") until interrupted")
	return cmd
}

func notifyError(ctx context.Context, logger *slog.Logger, notifier notifications.Service, err error, label string) {
	if ctx.Err() != nil {
		return
	}
	if notifyErr := notifier.NotifyError(context.WithoutCancel(ctx), err, label); notifyErr != nil {
		warnNotify(logger, notifyErr)
	}
}

func warnNotify(logger *slog.Logger, err error) {
	logging.WarnWithContext(logger, "notification failed", "notify_failed",
		logging.Error(err),
		logging.String(logging.FieldImpact, "run summary not delivered"),
		logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
	)
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
