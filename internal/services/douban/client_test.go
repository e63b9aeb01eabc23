package douban_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mediakeeper/internal/services"
	"mediakeeper/internal/services/douban"
)

func newClient(t *testing.T, server *httptest.Server) *douban.Client {
	t.Helper()
	client, err := douban.New(douban.Config{
		APIKey:     "key",
		Cookie:     "bid=abc",
		APIBaseURL: server.URL + "/api/v2",
		SuggestURL: server.URL + "/j/subject_suggest",
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := douban.New(douban.Config{APIBaseURL: "https://example.com", SuggestURL: "https://example.com/s"}); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestSuggestSendsDesktopHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/j/subject_suggest" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "盗梦空间 2010" {
			t.Errorf("unexpected query %q", got)
		}
		if r.Header.Get("Cookie") != "bid=abc" {
			t.Errorf("expected cookie header, got %q", r.Header.Get("Cookie"))
		}
		if r.Header.Get("Referer") != "https://movie.douban.com/" {
			t.Errorf("unexpected referer %q", r.Header.Get("Referer"))
		}
		if !strings.Contains(r.Header.Get("User-Agent"), "Windows NT") {
			t.Errorf("expected desktop user agent, got %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"3541415","title":"盗梦空间","year":"2010","episode":"","sub_title":"Inception","type":"movie"},{"id":"1","title":"Dark","year":"2017","episode":"26"}]`))
	}))
	t.Cleanup(server.Close)

	subjects, err := newClient(t, server).Suggest(context.Background(), "盗梦空间 2010")
	if err != nil {
		t.Fatalf("Suggest returned error: %v", err)
	}
	if len(subjects) != 2 {
		t.Fatalf("expected 2 subjects, got %d", len(subjects))
	}
	if subjects[0].ID != "3541415" || subjects[0].SubTitle != "Inception" || subjects[0].IsSeries() {
		t.Fatalf("unexpected first subject: %+v", subjects[0])
	}
	if !subjects[1].IsSeries() {
		t.Fatalf("expected episode marker on second subject: %+v", subjects[1])
	}
}

func TestSuggestHTTPErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	_, err := newClient(t, server).Suggest(context.Background(), "x")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestSuggestEmptyQuery(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)
	if _, err := newClient(t, server).Suggest(context.Background(), "  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCelebritiesSendsMobileHeadersAndKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/tv/26302614/celebrities" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("apikey") != "key" {
			t.Errorf("expected apikey query parameter, got %q", r.URL.RawQuery)
		}
		if !strings.Contains(r.Header.Get("User-Agent"), "MicroMessenger") {
			t.Errorf("expected mobile user agent, got %q", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte(`{"directors":[{"name":"巴让·欧·奥达","latin_name":"Baran bo Odar","roles":["导演"],"avatar":{"large":"https://img/large.jpg"}}],"actors":[{"name":"路易斯·霍夫曼","latin_name":"Louis Hofmann","character":"饰 Jonas Kahnwald"}]}`))
	}))
	t.Cleanup(server.Close)

	celebs, err := newClient(t, server).Celebrities(context.Background(), douban.MediaTV, "26302614")
	if err != nil {
		t.Fatalf("Celebrities returned error: %v", err)
	}
	if len(celebs.Directors) != 1 || celebs.Directors[0].LatinName != "Baran bo Odar" {
		t.Fatalf("unexpected directors: %+v", celebs.Directors)
	}
	if celebs.Directors[0].Avatar.Large != "https://img/large.jpg" || celebs.Directors[0].Roles[0] != "导演" {
		t.Fatalf("unexpected director detail: %+v", celebs.Directors[0])
	}
	if len(celebs.Actors) != 1 || celebs.Actors[0].Character != "饰 Jonas Kahnwald" {
		t.Fatalf("unexpected actors: %+v", celebs.Actors)
	}
}

func TestCelebritiesWithoutPeopleIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"msg":"invalid_request","code":100}`))
	}))
	t.Cleanup(server.Close)

	_, err := newClient(t, server).Celebrities(context.Background(), douban.MediaMovie, "1")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCelebritiesRejectsUnknownMediaType(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)
	_, err := newClient(t, server).Celebrities(context.Background(), "music", "1")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
