package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// ErrSampleCreated is returned by LoadOrCreate when no configuration existed and a
// placeholder file was written in its place.
var ErrSampleCreated = errors.New("sample configuration created")

// Douban contains credentials and endpoints for the Douban movie database.
type Douban struct {
	APIKey         string `toml:"api_key"`
	Cookie         string `toml:"cookie"`
	APIBaseURL     string `toml:"api_base_url"`
	SuggestURL     string `toml:"suggest_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// MediaDir points at the library root that holds NFO sidecars.
type MediaDir struct {
	Directory string `toml:"directory"`
}

// NFO contains the sidecar exclusion rules. Each value is a comma-separated list.
type NFO struct {
	ExcludeDirs            string `toml:"exclude_dirs"`
	ExcludedFilenames      string `toml:"excluded_filenames"`
	ExcludedSubdirKeywords string `toml:"excluded_subdir_keywords"`
}

// DownloadMgmt contains the Transmission RPC connection settings.
type DownloadMgmt struct {
	Enabled        bool   `toml:"download_mgmt"`
	URL            string `toml:"download_mgmt_url"`
	RPCPath        string `toml:"rpc_path"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	SessionRetries int    `toml:"session_retries"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Paths contains state file locations.
type Paths struct {
	LedgerFile string `toml:"ledger_file"`
	StateDir   string `toml:"state_dir"`
	LogDir     string `toml:"log_dir"`
}

// Throttle bounds the randomized courtesy delay between remote calls.
type Throttle struct {
	MinDelaySeconds float64 `toml:"min_delay_seconds"`
	MaxDelaySeconds float64 `toml:"max_delay_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Config encapsulates all configuration values for mediakeeper.
//
// Configuration sections by subsystem:
//   - Douban: credentials and endpoints for cast/crew lookups
//   - MediaDir: library root walked for NFO sidecars
//   - NFO: directory, keyword, and filename exclusion lists
//   - DownloadMgmt: Transmission RPC endpoint for the task cleaner
//   - Paths: processed ledger, state directory, and log directory
//   - Throttle: courtesy delay bounds between remote calls
//   - Logging: log format, level, and rotation
//   - Notifications: ntfy push notification settings
type Config struct {
	Douban        Douban        `toml:"douban"`
	MediaDir      MediaDir      `toml:"mediadir"`
	NFO           NFO           `toml:"nfo"`
	DownloadMgmt  DownloadMgmt  `toml:"download_mgmt"`
	Paths         Paths         `toml:"paths"`
	Throttle      Throttle      `toml:"throttle"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the configuration path used when none is supplied.
// MEDIAKEEPER_CONFIG overrides the built-in location.
func DefaultConfigPath() (string, error) {
	if value, ok := os.LookupEnv("MEDIAKEEPER_CONFIG"); ok && strings.TrimSpace(value) != "" {
		return expandPath(strings.TrimSpace(value))
	}
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and normalizes a configuration file. Validation is
// pipeline specific; callers run ValidateEnrich or ValidateClean.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// LoadOrCreate behaves like Load but writes the sample configuration when the
// file is missing and reports ErrSampleCreated so the operator can fill in real
// values before running again.
func LoadOrCreate(path string) (*Config, string, error) {
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		return nil, resolved, err
	}
	if !exists {
		if err := CreateSample(resolved); err != nil {
			return nil, resolved, err
		}
		return nil, resolved, fmt.Errorf("%w at %s; edit it and run again", ErrSampleCreated, resolved)
	}
	return cfg, resolved, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	var target string
	if strings.TrimSpace(path) != "" {
		expanded, err := expandPath(strings.TrimSpace(path))
		if err != nil {
			return "", false, err
		}
		target = expanded
	} else {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		target = defaultPath
	}

	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return target, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", target)
	}
	return target, true, nil
}

// EnsureDirectories creates the state and log directories plus the ledger's parent.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir, c.Paths.LogDir}
	if c.Paths.LedgerFile != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.LedgerFile))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JournalPath returns the SQLite history database location.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, "mediakeeper.db")
}

// RPCEndpoint returns the full Transmission RPC URL.
func (c *Config) RPCEndpoint() string {
	return strings.TrimRight(c.DownloadMgmt.URL, "/") + c.DownloadMgmt.RPCPath
}

// ExcludeDirs returns the directory names pruned during the walk.
func (c *Config) ExcludeDirs() []string {
	return SplitList(c.NFO.ExcludeDirs)
}

// ExcludedFilenames returns the sidecar base names that are never processed.
func (c *Config) ExcludedFilenames() []string {
	return SplitList(c.NFO.ExcludedFilenames)
}

// ExcludedSubdirKeywords returns the path substrings that exclude a subtree.
func (c *Config) ExcludedSubdirKeywords() []string {
	return SplitList(c.NFO.ExcludedSubdirKeywords)
}

// MinDelay returns the lower courtesy delay bound.
func (c *Config) MinDelay() time.Duration {
	return secondsToDuration(c.Throttle.MinDelaySeconds)
}

// MaxDelay returns the upper courtesy delay bound.
func (c *Config) MaxDelay() time.Duration {
	return secondsToDuration(c.Throttle.MaxDelaySeconds)
}

// DoubanTimeout returns the HTTP timeout applied to Douban requests.
func (c *Config) DoubanTimeout() time.Duration {
	return time.Duration(c.Douban.RequestTimeout) * time.Second
}

// RPCTimeout returns the HTTP timeout applied to Transmission requests.
func (c *Config) RPCTimeout() time.Duration {
	return time.Duration(c.DownloadMgmt.RequestTimeout) * time.Second
}

// SplitList splits a comma-separated configuration value, dropping blanks.
func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
