package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"eventcal/internal/report"
)

const fetchedRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:ev="urn:eventcal:feed">
  <channel>
    <item>
      <title>Later</title>
      <link>https://example.com/later</link>
      <ev:start>2025-01-10</ev:start>
      <ev:end>2025-01-10</ev:end>
    </item>
    <item>
      <title>Sooner</title>
      <link>https://example.com/sooner</link>
      <ev:start>2025-01-05</ev:start>
      <ev:end>2025-01-05</ev:end>
    </item>
    <item>
      <title>Dateless</title>
    </item>
  </channel>
</rss>`

type fakeFetcher struct {
	body []byte
	err  error
	urls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

func TestRunOneRendersFragment(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte(fetchedRSS)}
	p := New("https://example.com/feed?type=events", FormatRSS, time.UTC, fetcher, &report.Recorder{})

	el := &MapElement{Attrs: map[string]string{"tags": "music, art"}}
	if err := p.RunOne(context.Background(), el); err != nil {
		t.Fatalf("RunOne returned error: %v", err)
	}

	if !el.Rendered {
		t.Fatal("element content was not set")
	}
	// Default count of 2 keeps both dated items, sorted soonest first.
	soonerIdx := strings.Index(el.Content, "Sooner")
	laterIdx := strings.Index(el.Content, "Later")
	if soonerIdx == -1 || laterIdx == -1 || soonerIdx > laterIdx {
		t.Errorf("events missing or out of order: %s", el.Content)
	}
	if strings.Contains(el.Content, "Dateless") {
		t.Errorf("dateless item rendered: %s", el.Content)
	}

	if len(fetcher.urls) != 1 {
		t.Fatalf("expected 1 fetch, got %d", len(fetcher.urls))
	}
	if want := "https://example.com/feed?type=events&tag=music&tag=art"; fetcher.urls[0] != want {
		t.Errorf("fetched URL = %q, want %q", fetcher.urls[0], want)
	}
}

func TestRunOneFetchFailureLeavesElementUntouched(t *testing.T) {
	rec := &report.Recorder{}
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	p := New("https://example.com/feed", FormatRSS, time.UTC, fetcher, rec)

	el := &MapElement{Attrs: map[string]string{}}
	if err := p.RunOne(context.Background(), el); err == nil {
		t.Fatal("expected fetch error")
	}
	if el.Rendered {
		t.Error("element content set despite fetch failure")
	}
	if len(rec.Messages) != 1 {
		t.Errorf("expected 1 reported message, got %d", len(rec.Messages))
	}
}

func TestRunContinuesPastFailingElement(t *testing.T) {
	calls := 0
	fetcher := &flakyFetcher{failFirst: true, body: []byte(fetchedRSS), calls: &calls}
	p := New("https://example.com/feed", FormatRSS, time.UTC, fetcher, &report.Recorder{})

	bad := &MapElement{Attrs: map[string]string{}}
	good := &MapElement{Attrs: map[string]string{}}

	err := p.Run(context.Background(), []Element{bad, good})
	if err == nil {
		t.Fatal("expected joined error from the failing element")
	}
	if bad.Rendered {
		t.Error("failing element should stay untouched")
	}
	if !good.Rendered {
		t.Error("second element should still render")
	}
	if calls != 2 {
		t.Errorf("expected both elements fetched, got %d calls", calls)
	}
}

type flakyFetcher struct {
	failFirst bool
	body      []byte
	calls     *int
}

func (f *flakyFetcher) Fetch(context.Context, string) ([]byte, error) {
	*f.calls++
	if f.failFirst && *f.calls == 1 {
		return nil, errors.New("boom")
	}
	return f.body, nil
}

func TestRunOneEmptySelection(t *testing.T) {
	empty := `<?xml version="1.0"?><rss><channel></channel></rss>`
	p := New("https://example.com/feed", FormatRSS, time.UTC, &fakeFetcher{body: []byte(empty)}, nil)

	el := &MapElement{Attrs: map[string]string{}}
	if err := p.RunOne(context.Background(), el); err != nil {
		t.Fatalf("RunOne returned error: %v", err)
	}
	if el.Content != "There are no events to display." {
		t.Errorf("content = %q", el.Content)
	}
}

func TestParseQuery(t *testing.T) {
	attrs := map[string]string{
		"begin":      "2025-01-01",
		"end":        "2025-01-31",
		"count":      "5",
		"tags":       "music, art",
		"categories": "food,  fun",
		"show-year":  "true",
	}
	attr := func(name string) string { return attrs[name] }

	q := ParseQuery(attr, time.UTC)
	if q.Begin.IsZero() || q.End.IsZero() {
		t.Fatal("range bounds not parsed")
	}
	// A date-only end covers its whole day.
	if q.End.Hour() != 23 || q.End.Minute() != 59 {
		t.Errorf("end not normalized to end of day: %v", q.End)
	}
	if q.Count != 5 {
		t.Errorf("count = %d", q.Count)
	}
	if !q.ShowYear {
		t.Error("show-year not parsed")
	}
	if len(q.Tags) != 2 || len(q.Categories) != 2 {
		t.Errorf("filters = %v / %v", q.Tags, q.Categories)
	}
}

func TestParseQueryDefaults(t *testing.T) {
	attr := func(string) string { return "" }
	q := ParseQuery(attr, time.UTC)

	if !q.Begin.IsZero() || !q.End.IsZero() {
		t.Error("missing bounds should stay unbounded")
	}
	if q.Count != 2 {
		t.Errorf("default count = %d, want 2", q.Count)
	}
	if q.ShowYear {
		t.Error("show-year should default to false")
	}
}

func TestParseQueryInvalidValues(t *testing.T) {
	attrs := map[string]string{
		"begin":     "soon",
		"count":     "-3",
		"show-year": "TRUE",
	}
	q := ParseQuery(func(name string) string { return attrs[name] }, time.UTC)

	if !q.Begin.IsZero() {
		t.Error("unparseable begin should stay unbounded")
	}
	if q.Count != 2 {
		t.Errorf("invalid count should fall back to 2, got %d", q.Count)
	}
	// show-year is literal "true" only.
	if q.ShowYear {
		t.Error(`"TRUE" should not enable show-year`)
	}
}
