package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/robfig/cron/v3"

	"mediakeeper/internal/logging"
)

// runOnSchedule invokes pass on every tick of spec until ctx is cancelled.
// A tick that fires while the previous pass is still running is skipped.
func runOnSchedule(ctx context.Context, spec string, logger *slog.Logger, pass func(context.Context) error) error {
	spec = strings.TrimSpace(spec)
	cronLog := cronLogger{logger: logging.NewComponentLogger(logger, "scheduler")}
	scheduler := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	id, err := scheduler.AddFunc(spec, func() {
		if err := pass(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.ErrorWithContext(cronLog.logger, "scheduled pass failed", "scheduled_pass_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "the next tick will retry"),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid --schedule %q: %w", spec, err)
	}

	scheduler.Start()
	cronLog.logger.Info("scheduler started",
		logging.String("schedule", spec),
		logging.Time("next_run", scheduler.Entry(id).Next),
	)

	<-ctx.Done()
	cronLog.logger.Info("scheduler stopping")
	<-scheduler.Stop().Done()
	return nil
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{logging.Error(err)}, keysAndValues...)...)
}
