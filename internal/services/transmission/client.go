package transmission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"mediakeeper/internal/services"
)

// SessionHeader carries the CSRF token required by the RPC endpoint.
const SessionHeader = "X-Transmission-Session-Id"

const component = "transmission"

// Config describes how to reach the RPC endpoint.
type Config struct {
	// Endpoint is the full RPC URL, for example http://host:9091/transmission/rpc.
	Endpoint       string
	Username       string
	Password       string
	SessionRetries int
	Timeout        time.Duration
}

// Client issues RPC calls and owns the session token.
type Client struct {
	endpoint   string
	username   string
	password   string
	retries    int
	httpClient *http.Client

	mu        sync.Mutex
	sessionID string
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

// New creates an RPC client.
func New(cfg Config, opts ...Option) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("transmission rpc endpoint required")
	}
	if cfg.SessionRetries < 0 {
		return nil, errors.New("transmission session retries must not be negative")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		endpoint:   endpoint,
		username:   cfg.Username,
		password:   cfg.Password,
		retries:    cfg.SessionRetries,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SessionID returns the current session token.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Client) setSessionID(id string) {
	if id == "" {
		return
	}
	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()
}

// Torrents lists every task with the fixed field set.
func (c *Client) Torrents(ctx context.Context) ([]Torrent, error) {
	var out struct {
		Torrents []Torrent `json:"torrents"`
	}
	args := map[string]any{"fields": TorrentFields}
	if err := c.call(ctx, "torrent-get", args, &out); err != nil {
		return nil, err
	}
	return out.Torrents, nil
}

// Remove deletes the task, optionally together with its downloaded data.
func (c *Client) Remove(ctx context.Context, id int64, deleteLocalData bool) error {
	args := map[string]any{
		"ids":               []int64{id},
		"delete-local-data": deleteLocalData,
	}
	return c.call(ctx, "torrent-remove", args, nil)
}

// SessionGet fetches daemon details; used as a reachability probe.
func (c *Client) SessionGet(ctx context.Context) (*Session, error) {
	var session Session
	if err := c.call(ctx, "session-get", nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

type rpcRequest struct {
	Method    string `json:"method"`
	Arguments any    `json:"arguments,omitempty"`
}

type rpcResponse struct {
	Result    string          `json:"result"`
	Arguments json.RawMessage `json:"arguments"`
}

// call performs one RPC, refreshing the session token and retrying on 409 at
// most c.retries times.
func (c *Client) call(ctx context.Context, method string, args any, out any) error {
	body, err := json.Marshal(rpcRequest{Method: method, Arguments: args})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	for attempt := 0; ; attempt++ {
		resp, latency, err := c.post(ctx, body)
		if err != nil {
			return services.Wrap(services.ErrTransient, component, method, fmt.Sprintf("execute request (latency=%v)", latency), err)
		}
		c.setSessionID(resp.Header.Get(SessionHeader))

		if resp.StatusCode == http.StatusConflict {
			drain(resp)
			if attempt >= c.retries {
				return services.Wrap(services.ErrSessionConflict, component, method,
					fmt.Sprintf("session token rejected after %d attempts", attempt+1), nil)
			}
			continue
		}
		return c.decode(resp, method, latency, out)
	}
}

func (c *Client) post(ctx context.Context, body []byte) (*http.Response, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.SessionID(); token != "" {
		req.Header.Set(SessionHeader, token)
	}
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	return resp, time.Since(requestStart), err
}

func (c *Client) decode(resp *http.Response, method string, latency time.Duration, out any) error {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return services.Wrap(services.ErrConfiguration, component, method,
			fmt.Sprintf("returned %d (check download_mgmt.username and password)", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return services.Wrap(services.ErrTransient, component, method,
			fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var payload rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return services.Wrap(services.ErrTransient, component, method, "decode response", err)
	}
	if payload.Result != "success" {
		return services.Wrap(services.ErrTransient, component, method, fmt.Sprintf("rpc result %q", payload.Result), nil)
	}
	if out == nil || len(payload.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload.Arguments, out); err != nil {
		return services.Wrap(services.ErrTransient, component, method, "decode arguments", err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	_ = resp.Body.Close()
}
