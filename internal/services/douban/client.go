package douban

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mediakeeper/internal/services"
)

const (
	desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/105.0.0.0 Safari/537.36 Edg/105.0.1343.27"
	desktopReferer   = "https://movie.douban.com/"
	mobileUserAgent  = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148 MicroMessenger/8.0.27(0x18001b33) NetType/WIFI Language/zh_CN"
	mobileReferer    = "https://servicewechat.com/wx2f9b06c1de1ccfca/85/page-frame.html"

	component = "douban"
)

// Media types accepted by the celebrities endpoint.
const (
	MediaMovie = "movie"
	MediaTV    = "tv"
)

// Subject is one entry of the suggestion search.
type Subject struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Year     string `json:"year"`
	Episode  string `json:"episode"`
	SubTitle string `json:"sub_title"`
	Type     string `json:"type"`
	Img      string `json:"img"`
}

// IsSeries reports whether the subject carries an episode marker.
func (s Subject) IsSeries() bool {
	return strings.TrimSpace(s.Episode) != ""
}

// Avatar holds celebrity portrait URLs.
type Avatar struct {
	Large  string `json:"large"`
	Normal string `json:"normal"`
}

// Person is a director or actor returned by the celebrities endpoint.
type Person struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	LatinName string   `json:"latin_name"`
	Character string   `json:"character"`
	Roles     []string `json:"roles"`
	Avatar    Avatar   `json:"avatar"`
}

// Celebrities is the cast and crew payload for one subject.
type Celebrities struct {
	Directors []Person `json:"directors"`
	Actors    []Person `json:"actors"`
}

// Config describes how to reach Douban.
type Config struct {
	APIKey     string
	Cookie     string
	APIBaseURL string
	SuggestURL string
	Timeout    time.Duration
}

// Client provides access to the Douban endpoints.
type Client struct {
	apiKey     string
	cookie     string
	apiBase    string
	suggestURL string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a Douban client.
func New(cfg Config, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("douban api key required")
	}
	apiBase := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if apiBase == "" {
		return nil, errors.New("douban api base url required")
	}
	suggestURL := strings.TrimSpace(cfg.SuggestURL)
	if suggestURL == "" {
		return nil, errors.New("douban suggest url required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		apiKey:     apiKey,
		cookie:     strings.TrimSpace(cfg.Cookie),
		apiBase:    apiBase,
		suggestURL: suggestURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Suggest searches subjects by title or IMDb id.
func (c *Client) Suggest(ctx context.Context, query string) ([]Subject, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, component, "suggest", "query must not be empty", nil)
	}
	endpoint, err := url.Parse(c.suggestURL)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "suggest", "parse suggest url", err)
	}
	params := endpoint.Query()
	params.Set("q", query)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)
	req.Header.Set("Referer", desktopReferer)
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	var subjects []Subject
	if err := c.do(req, "suggest", &subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

// Celebrities fetches directors and actors for the subject id.
func (c *Client) Celebrities(ctx context.Context, mediaType, id string) (*Celebrities, error) {
	if mediaType != MediaMovie && mediaType != MediaTV {
		return nil, services.Wrap(services.ErrValidation, component, "celebrities", fmt.Sprintf("unsupported media type %q", mediaType), nil)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, services.Wrap(services.ErrValidation, component, "celebrities", "subject id must not be empty", nil)
	}
	endpoint, err := url.Parse(fmt.Sprintf("%s/%s/%s/celebrities", c.apiBase, mediaType, url.PathEscape(id)))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "celebrities", "parse api url", err)
	}
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", mobileUserAgent)
	req.Header.Set("Referer", mobileReferer)
	req.Header.Set("Content-Type", "application/json")

	var payload Celebrities
	if err := c.do(req, "celebrities", &payload); err != nil {
		return nil, err
	}
	if payload.Directors == nil && payload.Actors == nil {
		return nil, services.Wrap(services.ErrNotFound, component, "celebrities", fmt.Sprintf("no cast or crew for %s %s", mediaType, id), nil)
	}
	return &payload, nil
}

func (c *Client) do(req *http.Request, operation string, out any) error {
	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return services.Wrap(services.ErrTransient, component, operation, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrTransient, component, operation, fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransient, component, operation, "decode response", err)
	}
	return nil
}
