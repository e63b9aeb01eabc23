package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mediakeeper/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The media directory exists, throttling is disabled, and the Douban key is set.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Douban.APIKey = "test"
	cfgVal.Douban.Cookie = "bid=test"
	cfgVal.MediaDir.Directory = filepath.Join(base, "media")
	cfgVal.Paths.LedgerFile = filepath.Join(base, "config", "processed_nfo_files.txt")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Throttle.MinDelaySeconds = 0
	cfgVal.Throttle.MaxDelaySeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	if err := os.MkdirAll(cfgVal.MediaDir.Directory, 0o755); err != nil {
		t.Fatalf("mkdir media dir: %v", err)
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDoubanEndpoints points the Douban client at a test server.
func WithDoubanEndpoints(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Douban.APIBaseURL = baseURL
		b.cfg.Douban.SuggestURL = baseURL + "/j/subject_suggest"
	}
}

// WithTransmission enables the download cleaner against the provided URL.
func WithTransmission(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.DownloadMgmt.Enabled = true
		b.cfg.DownloadMgmt.URL = url
	}
}

// WithNtfyTopic routes notifications to the provided URL.
func WithNtfyTopic(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = url
	}
}

// BaseDir returns the directory NewConfig rooted the config under.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.MediaDir.Directory)
}
