package preflight

import (
	"context"

	"mediakeeper/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name    string
	Passed  bool
	Skipped bool
	Detail  string
}

// RunAll executes every preflight check for the given config in display order.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckConfig(cfg),
		CheckDirectoryAccess("Media directory", cfg.MediaDir.Directory),
		CheckLedger(cfg.Paths.LedgerFile),
		CheckDoubanCredentials(cfg),
		CheckTransmission(ctx, cfg),
	}
}

// Failed reports whether any non-skipped check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Skipped {
			return true
		}
	}
	return false
}
