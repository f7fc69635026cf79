// Package pipeline orchestrates one render pass: read widget attributes,
// build the feed request, fetch and parse the document, select events and
// hand the formatted fragment to the target element.
package pipeline

import (
	"context"
	"errors"
	"time"

	"eventcal/internal/event"
	"eventcal/internal/feed"
	appLog "eventcal/internal/log"
	"eventcal/internal/model"
	"eventcal/internal/render"
	"eventcal/internal/report"
)

// FormatRSS and FormatICS are the declared feed formats. The format is
// configuration, never sniffed from the response.
const (
	FormatRSS = "rss"
	FormatICS = "ics"
)

// Element is one render target: a bag of string attributes plus a content
// sink. The zero attribute value means absent.
type Element interface {
	Attr(name string) string
	SetContent(fragment string)
}

// ContentFetcher retrieves a feed document. feed.Fetcher is the production
// implementation; tests inject fakes.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Pipeline renders widgets from a single configured feed.
type Pipeline struct {
	BaseURL    string
	FeedFormat string // FormatRSS or FormatICS
	Loc        *time.Location
	Fetcher    ContentFetcher
	Reporter   report.Reporter
	Formatter  *render.Formatter
}

// New wires a Pipeline with defaults filled in: UTC location, log-only
// reporter, default style.
func New(baseURL, format string, loc *time.Location, fetcher ContentFetcher, rep report.Reporter) *Pipeline {
	if loc == nil {
		loc = time.UTC
	}
	if rep == nil {
		rep = report.LogReporter{}
	}
	if format == "" {
		format = FormatRSS
	}
	return &Pipeline{
		BaseURL:    baseURL,
		FeedFormat: format,
		Loc:        loc,
		Fetcher:    fetcher,
		Reporter:   rep,
		Formatter:  render.NewFormatter(render.DefaultStyle(), rep),
	}
}

// Run processes elements strictly one after another; a failing element is
// skipped (its content untouched) and the rest still render. The joined
// per-element errors are returned.
func (p *Pipeline) Run(ctx context.Context, els []Element) error {
	var errs []error
	for _, el := range els {
		if err := p.RunOne(ctx, el); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunOne renders a single element. On any failure the element is left
// unmodified and the error is logged, reported and returned.
func (p *Pipeline) RunOne(ctx context.Context, el Element) error {
	q := ParseQuery(el.Attr, p.Loc)

	events, err := p.SelectEvents(ctx, q)
	if err != nil {
		return err
	}

	fragment, err := p.Formatter.Format(events, q.ShowYear)
	if err != nil {
		return err
	}

	el.SetContent(fragment)
	return nil
}

// SelectEvents runs the fetch/parse/select half of the pipeline for one
// query. The -dump preview mode uses it directly.
func (p *Pipeline) SelectEvents(ctx context.Context, q model.Query) ([]model.Event, error) {
	url := feed.BuildURL(p.BaseURL, q.Tags, q.Categories)

	body, err := p.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, p.fail("feed fetch failed", err, url)
	}

	var items []feed.Item
	switch p.FeedFormat {
	case FormatICS:
		items, err = feed.ParseICS(body, q.Begin, q.End, p.Loc)
	default:
		items, err = feed.Parse(body)
	}
	if err != nil {
		return nil, p.fail("feed parse failed", err, url)
	}

	// Select reports its own invariant violations.
	return event.Select(items, q, p.Loc, p.Reporter)
}

func (p *Pipeline) fail(msg string, err error, url string) error {
	appLog.Error(msg, err, "url", url)
	p.Reporter.Report(msg + ": " + err.Error())
	return err
}
