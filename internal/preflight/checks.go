package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"mediakeeper/internal/config"
	"mediakeeper/internal/services"
	"mediakeeper/internal/services/transmission"
)

// CheckConfig reports whether the enrich and clean settings validate.
func CheckConfig(cfg *config.Config) Result {
	const name = "Configuration"
	if err := cfg.ValidateEnrich(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if err := cfg.ValidateClean(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "valid"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckLedger verifies the ledger's directory is writable and, when the ledger
// already exists, that the file itself can be appended to.
func CheckLedger(path string) Result {
	const name = "Processed ledger"
	if path == "" {
		return Result{Name: name, Detail: "paths.ledger_file not configured"}
	}
	dir := CheckDirectoryAccess(name, filepath.Dir(path))
	if !dir.Passed {
		return dir
	}
	if _, err := os.Stat(path); err == nil {
		if err := unix.Access(path, unix.W_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: not writable: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (writable)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckDoubanCredentials reports whether an API key and a real cookie are configured.
func CheckDoubanCredentials(cfg *config.Config) Result {
	const name = "Douban credentials"
	if cfg.Douban.APIKey == "" {
		return Result{Name: name, Detail: "api key missing"}
	}
	if !cfg.CookieConfigured() {
		return Result{Name: name, Detail: "cookie missing or still the sample placeholder"}
	}
	return Result{Name: name, Passed: true, Detail: "api key and cookie set"}
}

// CheckTransmission performs a session-get round trip against the RPC endpoint.
func CheckTransmission(ctx context.Context, cfg *config.Config) Result {
	const name = "Transmission"
	if !cfg.DownloadMgmt.Enabled {
		return Result{Name: name, Skipped: true, Detail: "disabled"}
	}

	client, err := transmission.New(transmission.Config{
		Endpoint:       cfg.RPCEndpoint(),
		Username:       cfg.DownloadMgmt.Username,
		Password:       cfg.DownloadMgmt.Password,
		SessionRetries: cfg.DownloadMgmt.SessionRetries,
		Timeout:        cfg.RPCTimeout(),
	})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	session, err := client.SessionGet(ctx)
	if err != nil {
		return Result{Name: name, Detail: summarizeRPCError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (version %s, rpc %d)", session.Version, session.RPCVersion)}
}

func summarizeRPCError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "session-get timed out"
	case errors.Is(err, services.ErrConfiguration):
		return "authentication rejected (check username/password)"
	case errors.Is(err, services.ErrSessionConflict):
		return "session id negotiation failed"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "session-get timed out (RPC unreachable)"
	}
	return err.Error()
}
