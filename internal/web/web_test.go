package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eventcal/internal/config"
	"eventcal/internal/model"
	"eventcal/internal/pipeline"
	"eventcal/internal/report"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:ev="urn:eventcal:feed">
  <channel>
    <item>
      <title>Concert</title>
      <link>https://example.com/concert</link>
      <ev:start>2025-03-01T19:00</ev:start>
      <ev:end>2025-03-01T22:00</ev:end>
    </item>
  </channel>
</rss>`

type staticFetcher struct {
	body []byte
	err  error
}

func (f staticFetcher) Fetch(context.Context, string) ([]byte, error) {
	return f.body, f.err
}

func testServer(cfg *config.Config, fetcher pipeline.ContentFetcher) *Server {
	pipe := pipeline.New("https://example.com/feed", pipeline.FormatRSS, time.UTC, fetcher, &report.Recorder{})
	return NewServer(cfg, pipe)
}

func TestHandleWidget(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Widgets = []model.Widget{{ID: "home", Count: "2"}}

	srv := testServer(cfg, staticFetcher{body: []byte(testRSS)})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/widgets/home", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Concert") {
		t.Errorf("fragment missing event: %s", rec.Body.String())
	}
}

func TestHandleWidgetUnknownID(t *testing.T) {
	srv := testServer(config.DefaultConfig(), staticFetcher{body: []byte(testRSS)})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/widgets/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleRenderAdHoc(t *testing.T) {
	srv := testServer(config.DefaultConfig(), staticFetcher{body: []byte(testRSS)})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/render?count=1&show-year=true", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "eventcal-year") {
		t.Errorf("show-year not honored: %s", rec.Body.String())
	}
}

func TestHandleRenderFetchFailure(t *testing.T) {
	srv := testServer(config.DefaultConfig(), staticFetcher{err: errors.New("unreachable")})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/render", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestBasicAuth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "admin", Password: "secret"}
	srv := testServer(cfg, staticFetcher{body: []byte(testRSS)})
	h := srv.Handler()

	// /health stays open.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/health status = %d", rec.Code)
	}

	// Everything else requires credentials.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/widget.css", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/widget.css", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated status = %d", rec.Code)
	}
}

func TestStylesheetEndpoint(t *testing.T) {
	srv := testServer(config.DefaultConfig(), staticFetcher{body: []byte(testRSS)})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/widget.css", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ".eventcal-item") {
		t.Errorf("stylesheet missing class rules")
	}
}
