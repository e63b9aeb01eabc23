package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// placeholderCookie is the value written by the sample configuration.
const placeholderCookie = "your_cookie"

// ValidateEnrich ensures the settings used by the NFO enricher are usable.
func (c *Config) ValidateEnrich() error {
	if c.Douban.APIKey == "" {
		return errors.New("douban.api_key is required. Set DOUBAN_API_KEY or edit the config file")
	}
	if strings.TrimSpace(c.MediaDir.Directory) == "" {
		return errors.New("mediadir.directory must be set")
	}
	if err := validateURL("douban.api_base_url", c.Douban.APIBaseURL); err != nil {
		return err
	}
	if err := validateURL("douban.suggest_url", c.Douban.SuggestURL); err != nil {
		return err
	}
	if err := c.validateThrottle(); err != nil {
		return err
	}
	if c.Paths.LedgerFile == "" {
		return errors.New("paths.ledger_file must be set")
	}
	return nil
}

// ValidateClean ensures the settings used by the task cleaner are usable.
func (c *Config) ValidateClean() error {
	if !c.DownloadMgmt.Enabled {
		return nil
	}
	if c.DownloadMgmt.URL == "" {
		return errors.New("download_mgmt.download_mgmt_url must be set when download_mgmt.download_mgmt is true")
	}
	if err := validateURL("download_mgmt.download_mgmt_url", c.DownloadMgmt.URL); err != nil {
		return err
	}
	if c.DownloadMgmt.SessionRetries < 0 {
		return errors.New("download_mgmt.session_retries must not be negative")
	}
	return nil
}

// CookieConfigured reports whether a real Douban cookie replaced the sample placeholder.
func (c *Config) CookieConfigured() bool {
	return c.Douban.Cookie != "" && c.Douban.Cookie != placeholderCookie
}

func (c *Config) validateThrottle() error {
	if c.Throttle.MinDelaySeconds < 0 {
		return errors.New("throttle.min_delay_seconds must not be negative")
	}
	if c.Throttle.MaxDelaySeconds < c.Throttle.MinDelaySeconds {
		return errors.New("throttle.max_delay_seconds must be greater than or equal to throttle.min_delay_seconds")
	}
	return nil
}

func validateURL(field, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", field, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s is missing a host: %q", field, value)
	}
	return nil
}
