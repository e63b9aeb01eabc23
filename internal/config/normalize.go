package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeDouban()
	if err := c.normalizeMediaDir(); err != nil {
		return err
	}
	c.normalizeDownloadMgmt()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	return nil
}

func (c *Config) normalizeDouban() {
	c.Douban.APIKey = strings.TrimSpace(c.Douban.APIKey)
	if c.Douban.APIKey == "" {
		if value, ok := os.LookupEnv("DOUBAN_API_KEY"); ok {
			c.Douban.APIKey = strings.TrimSpace(value)
		}
	}
	c.Douban.Cookie = strings.TrimSpace(c.Douban.Cookie)
	if c.Douban.Cookie == "" {
		if value, ok := os.LookupEnv("DOUBAN_COOKIE"); ok {
			c.Douban.Cookie = strings.TrimSpace(value)
		}
	}
	c.Douban.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Douban.APIBaseURL), "/")
	if c.Douban.APIBaseURL == "" {
		c.Douban.APIBaseURL = defaultDoubanAPIBaseURL
	}
	c.Douban.SuggestURL = strings.TrimSpace(c.Douban.SuggestURL)
	if c.Douban.SuggestURL == "" {
		c.Douban.SuggestURL = defaultDoubanSuggestURL
	}
	if c.Douban.RequestTimeout <= 0 {
		c.Douban.RequestTimeout = defaultDoubanRequestTimeout
	}
}

func (c *Config) normalizeMediaDir() error {
	var err error
	if c.MediaDir.Directory, err = expandPath(strings.TrimSpace(c.MediaDir.Directory)); err != nil {
		return fmt.Errorf("mediadir.directory: %w", err)
	}
	return nil
}

func (c *Config) normalizeDownloadMgmt() {
	c.DownloadMgmt.URL = strings.TrimSpace(c.DownloadMgmt.URL)
	if c.DownloadMgmt.URL == "" {
		if value, ok := os.LookupEnv("TRANSMISSION_URL"); ok {
			c.DownloadMgmt.URL = strings.TrimSpace(value)
		}
	}
	c.DownloadMgmt.Username = strings.TrimSpace(c.DownloadMgmt.Username)
	if c.DownloadMgmt.Username == "" {
		if value, ok := os.LookupEnv("TRANSMISSION_USERNAME"); ok {
			c.DownloadMgmt.Username = strings.TrimSpace(value)
		}
	}
	if c.DownloadMgmt.Password == "" {
		if value, ok := os.LookupEnv("TRANSMISSION_PASSWORD"); ok {
			c.DownloadMgmt.Password = value
		}
	}
	c.DownloadMgmt.RPCPath = strings.TrimSpace(c.DownloadMgmt.RPCPath)
	if c.DownloadMgmt.RPCPath == "" {
		c.DownloadMgmt.RPCPath = defaultRPCPath
	}
	if !strings.HasPrefix(c.DownloadMgmt.RPCPath, "/") {
		c.DownloadMgmt.RPCPath = "/" + c.DownloadMgmt.RPCPath
	}
	if c.DownloadMgmt.RequestTimeout <= 0 {
		c.DownloadMgmt.RequestTimeout = defaultRPCRequestTimeout
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LedgerFile) == "" {
		c.Paths.LedgerFile = defaultLedgerFile
	}
	if c.Paths.LedgerFile, err = expandPath(strings.TrimSpace(c.Paths.LedgerFile)); err != nil {
		return fmt.Errorf("paths.ledger_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
}
