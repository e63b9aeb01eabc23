package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mediakeeper/internal/config"
)

const userAgent = "mediakeeper/0.1.0"

// EnrichmentSummary describes a finished enrichment pass.
type EnrichmentSummary struct {
	Discovered int
	Enriched   int
	Unresolved int
	Skipped    int
	Failed     int
	Duration   time.Duration
}

// CleanupSummary describes a finished cleanup pass.
type CleanupSummary struct {
	Listed  int
	Removed int
	Failed  int
	DryRun  bool
}

// Service defines the notification surface exposed to the commands.
type Service interface {
	NotifyEnrichmentComplete(ctx context.Context, summary EnrichmentSummary) error
	NotifyCleanupComplete(ctx context.Context, summary CleanupSummary) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyEnrichmentComplete(ctx context.Context, s EnrichmentSummary) error {
	if s.Enriched == 0 && s.Failed == 0 {
		return nil
	}
	title := "mediakeeper - NFO Enrichment Complete"
	if s.Failed > 0 {
		title = "mediakeeper - NFO Enrichment Complete (with errors)"
	}
	data := payload{
		title: title,
		message: fmt.Sprintf("Enriched %d of %d sidecars in %s\nUnresolved: %d, skipped: %d, failed: %d",
			s.Enriched, s.Discovered, roundDuration(s.Duration), s.Unresolved, s.Skipped, s.Failed),
		tags: []string{"mediakeeper", "nfo", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCleanupComplete(ctx context.Context, s CleanupSummary) error {
	if s.Removed == 0 && s.Failed == 0 {
		return nil
	}
	data := payload{
		title:   "mediakeeper - Download Cleanup",
		message: fmt.Sprintf("Removed %d stopped tasks (%d failed) out of %d listed", s.Removed, s.Failed, s.Listed),
		tags:    []string{"mediakeeper", "transmission", "cleanup"},
	}
	if s.DryRun {
		data.message = "Dry run: " + data.message
		data.priority = "low"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" during ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "mediakeeper - Error",
		message:  builder.String(),
		tags:     []string{"mediakeeper", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "mediakeeper - Test",
		message:  "Notification system test",
		tags:     []string{"mediakeeper", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func roundDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

type noopService struct{}

func (noopService) NotifyEnrichmentComplete(context.Context, EnrichmentSummary) error { return nil }
func (noopService) NotifyCleanupComplete(context.Context, CleanupSummary) error       { return nil }
func (noopService) NotifyError(context.Context, error, string) error                  { return nil }
func (noopService) TestNotification(context.Context) error                            { return nil }
