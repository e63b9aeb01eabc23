package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediakeeper/internal/logging"
	"mediakeeper/internal/notifications"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var schedule string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stopped Transmission tasks and their downloaded data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.DownloadMgmt.Enabled {
				fmt.Fprintln(out, "Download management disabled; set download_mgmt.download_mgmt = true to enable cleanup")
				return nil
			}
			if err := cfg.ValidateClean(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger, err := ctx.newLogger(cmd)
			if err != nil {
				return err
			}

			store := openJournalOrWarn(ctx, logger)
			if store != nil {
				defer store.Close()
			}
			notifier := notifications.NewService(cfg)

			pass := func(parent context.Context) error {
				runCtx, runID := newRunContext(parent, pipelineClean)
				runLogger := logging.WithContext(runCtx, logger)
				runLogger.Info("cleanup pass starting",
					logging.String("endpoint", cfg.RPCEndpoint()),
					logging.Bool("dry_run", dryRun),
				)

				result, err := runCleanPass(runCtx, cfg, logger, store, dryRun)
				if err != nil {
					notifyError(runCtx, runLogger, notifier, err, pipelineClean)
					return err
				}
				if dryRun {
					for _, t := range result.Candidates {
						fmt.Fprintf(out, "Would remove #%d %s\n", t.ID, t.Name)
					}
					fmt.Fprintf(out, "Run %s: dry run, %d of %d tasks are stopped\n",
						shortRunID(runID), len(result.Candidates), result.Listed)
				} else {
					fmt.Fprintf(out, "Run %s: removed %d of %d stopped tasks (%d listed, %d failed)\n",
						shortRunID(runID), result.Removed, len(result.Candidates), result.Listed, result.Failed)
				}
				if err := notifier.NotifyCleanupComplete(runCtx, notifications.CleanupSummary{
					Listed:  result.Listed,
					Removed: result.Removed,
					Failed:  result.Failed,
					DryRun:  dryRun,
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

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List stopped tasks without removing them")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Repeat on a cron schedule (e.g. \"*/30 * * * *\") until interrupted")
	return cmd
}
