package transmission_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"mediakeeper/internal/services"
	"mediakeeper/internal/services/transmission"
)

type rpcCall struct {
	Method    string         `json:"method"`
	Arguments map[string]any `json:"arguments"`
}

func newClient(t *testing.T, url string, retries int) *transmission.Client {
	t.Helper()
	client, err := transmission.New(transmission.Config{Endpoint: url, SessionRetries: retries})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestTorrentsRefreshesTokenOn409(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if r.Header.Get(transmission.SessionHeader) != "token-1" {
			w.Header().Set(transmission.SessionHeader, "token-1")
			w.WriteHeader(http.StatusConflict)
			return
		}
		var call rpcCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if call.Method != "torrent-get" {
			t.Errorf("unexpected method %q", call.Method)
		}
		fields, _ := call.Arguments["fields"].([]any)
		if len(fields) != len(transmission.TorrentFields) {
			t.Errorf("unexpected fields %v", call.Arguments["fields"])
		}
		if n != 2 {
			t.Errorf("expected success on second attempt, got attempt %d", n)
		}
		_, _ = w.Write([]byte(`{"result":"success","arguments":{"torrents":[{"id":3,"name":"ubuntu.iso","percentDone":1,"status":0,"rateDownload":0,"rateUpload":512,"magnetLink":"magnet:?xt=urn:btih:abc"}]}}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL, 2)
	torrents, err := client.Torrents(context.Background())
	if err != nil {
		t.Fatalf("Torrents returned error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
	if client.SessionID() != "token-1" {
		t.Fatalf("expected token to be stored, got %q", client.SessionID())
	}
	if len(torrents) != 1 || torrents[0].ID != 3 || !torrents[0].Stopped() || torrents[0].RateUpload != 512 {
		t.Fatalf("unexpected torrents: %+v", torrents)
	}
}

func TestPersistent409GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set(transmission.SessionHeader, "token-"+string(rune('a'+n)))
		w.WriteHeader(http.StatusConflict)
	}))
	t.Cleanup(server.Close)

	_, err := newClient(t, server.URL, 2).Torrents(context.Background())
	if !errors.Is(err, services.ErrSessionConflict) {
		t.Fatalf("expected ErrSessionConflict, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected initial call plus 2 retries, got %d", calls.Load())
	}
}

func TestZeroRetriesFailsImmediately(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
	}))
	t.Cleanup(server.Close)

	if _, err := newClient(t, server.URL, 0).Torrents(context.Background()); !errors.Is(err, services.ErrSessionConflict) {
		t.Fatalf("expected ErrSessionConflict, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestRemoveSendsDeleteFlagAndUpdatesToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			t.Errorf("expected basic auth, got %q %q %v", user, pass, ok)
		}
		var call rpcCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if call.Method != "torrent-remove" {
			t.Errorf("unexpected method %q", call.Method)
		}
		if call.Arguments["delete-local-data"] != true {
			t.Errorf("expected delete-local-data=true, got %v", call.Arguments["delete-local-data"])
		}
		ids, _ := call.Arguments["ids"].([]any)
		if len(ids) != 1 || ids[0] != float64(9) {
			t.Errorf("unexpected ids %v", call.Arguments["ids"])
		}
		w.Header().Set(transmission.SessionHeader, "rotated")
		_, _ = w.Write([]byte(`{"result":"success","arguments":{}}`))
	}))
	t.Cleanup(server.Close)

	client, err := transmission.New(transmission.Config{Endpoint: server.URL, Username: "admin", Password: "secret", SessionRetries: 1})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := client.Remove(context.Background(), 9, true); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if client.SessionID() != "rotated" {
		t.Fatalf("expected rotated token, got %q", client.SessionID())
	}
}

func TestRPCFailureResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"invalid argument","arguments":{}}`))
	}))
	t.Cleanup(server.Close)

	err := newClient(t, server.URL, 1).Remove(context.Background(), 1, true)
	if err == nil || !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient rpc error, got %v", err)
	}
}

func TestUnauthorizedIsConfigurationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	if _, err := newClient(t, server.URL, 1).SessionGet(context.Background()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSessionGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"success","arguments":{"version":"4.0.5","rpc-version":17,"download-dir":"/downloads"}}`))
	}))
	t.Cleanup(server.Close)

	session, err := newClient(t, server.URL, 1).SessionGet(context.Background())
	if err != nil {
		t.Fatalf("SessionGet returned error: %v", err)
	}
	if session.Version != "4.0.5" || session.RPCVersion != 17 || session.DownloadDirectory != "/downloads" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := transmission.New(transmission.Config{}); err == nil {
		t.Fatal("expected error for missing endpoint")
	}
	if _, err := transmission.New(transmission.Config{Endpoint: "http://x", SessionRetries: -1}); err == nil {
		t.Fatal("expected error for negative retries")
	}
}

func TestStatusLabel(t *testing.T) {
	if transmission.StatusLabel(transmission.StatusSeed) != "seeding" || transmission.StatusLabel(42) != "unknown" {
		t.Fatal("unexpected status labels")
	}
}
