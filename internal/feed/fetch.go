// Package feed builds calendar feed request URLs, fetches feed documents
// and extracts raw event items from RSS/XML or ICS payloads.
package feed

import (
	"context"
	"errors"
	"io"
	"net/http"

	appLog "eventcal/internal/log"
)

// Item is a raw feed entry before timestamp parsing. Start and End are the
// ISO date / date-time strings from the feed; either may be empty, in which
// case selection drops the item.
type Item struct {
	Title       string
	Description string
	Link        string
	Start       string
	End         string
}

// Fetcher retrieves feed documents over HTTP. It performs a single GET per
// call: no conditional requests, no retries, no response caching. The
// caller's context is the only cancellation mechanism.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher on the given client. A nil client uses
// http.DefaultClient semantics.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{client: client}
}

// Fetch issues a GET for url and returns the response body. A non-2xx
// status is an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("feed URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	appLog.Debug("feed fetch start", "url", url)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New("feed fetch: " + resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	appLog.Info("feed fetch success", "url", url, "status", resp.StatusCode, "bytes", len(body))
	return body, nil
}
