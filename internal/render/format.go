// Package render turns selected events into the widget's HTML fragment and
// into a plain-text preview table for debugging.
package render

import (
	"html"
	"strconv"
	"strings"
	"time"

	"eventcal/internal/event"
	appLog "eventcal/internal/log"
	"eventcal/internal/model"
	"eventcal/internal/report"
)

// NoEvents is the exact fallback text for an empty selection.
const NoEvents = "There are no events to display."

// Style parameterizes the locale-dependent parts of formatting so tests do
// not depend on host locale settings.
type Style struct {
	// MonthNames are the short month labels, January first.
	MonthNames [12]string
	// TimeLayout is the Go layout for the time line, e.g. "3:04 PM".
	TimeLayout string
}

// DefaultStyle returns English short month names and a 12-hour clock.
func DefaultStyle() Style {
	return Style{
		MonthNames: [12]string{
			"Jan", "Feb", "Mar", "Apr", "May", "Jun",
			"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
		},
		TimeLayout: "3:04 PM",
	}
}

func (s Style) month(t time.Time) string {
	return s.MonthNames[int(t.Month())-1]
}

func (s Style) clock(t time.Time) string {
	return t.Format(s.TimeLayout)
}

// Formatter renders event lists with a fixed Style, reporting invariant
// violations to the error sink.
type Formatter struct {
	Style    Style
	Reporter report.Reporter
}

func NewFormatter(style Style, rep report.Reporter) *Formatter {
	return &Formatter{Style: style, Reporter: rep}
}

// Format renders events as an HTML fragment. An empty list yields exactly
// NoEvents. An event with a zero start or end is a should-never-happen
// state: it is reported and formatting aborts rather than emit partial
// markup.
func (f *Formatter) Format(events []model.Event, showYear bool) (string, error) {
	if len(events) == 0 {
		return NoEvents, nil
	}

	var b strings.Builder
	b.WriteString(`<div class="eventcal">`)

	for _, ev := range events {
		if ev.Start.IsZero() || ev.End.IsZero() {
			err := &event.InvariantError{Detail: "event reached formatting without start/end"}
			appLog.Error("formatting aborted", err)
			if f.Reporter != nil {
				f.Reporter.Report(err.Error())
			}
			return "", err
		}
		f.writeEvent(&b, ev, showYear)
	}

	b.WriteString(`</div>`)
	return b.String(), nil
}

func (f *Formatter) writeEvent(b *strings.Builder, ev model.Event, showYear bool) {
	b.WriteString(`<div class="eventcal-item">`)

	b.WriteString(`<div class="eventcal-date">`)
	writeSpan(b, "eventcal-month", span(f.Style.month(ev.Start), f.Style.month(ev.End)))
	writeSpan(b, "eventcal-day", span(strconv.Itoa(ev.Start.Day()), strconv.Itoa(ev.End.Day())))
	if showYear {
		writeSpan(b, "eventcal-year", span(strconv.Itoa(ev.Start.Year()), strconv.Itoa(ev.End.Year())))
	}
	b.WriteString(`</div>`)

	b.WriteString(`<div class="eventcal-desc">`)
	if ev.Title != "" {
		writeLink(b, "eventcal-title", ev.Link, ev.Title)
	}
	if ev.StartHasTime && ev.EndHasTime {
		b.WriteString(`<div class="eventcal-time">`)
		b.WriteString(html.EscapeString(f.Style.clock(ev.Start) + " - " + f.Style.clock(ev.End)))
		b.WriteString(`</div>`)
	}
	if text := StripTags(ev.Description); text != "" {
		writeSpan(b, "eventcal-text", text)
	}
	if ev.Link != "" {
		writeLink(b, "eventcal-more", ev.Link, "read more")
	}
	b.WriteString(`</div>`)

	b.WriteString(`</div>`)
}

// span compacts a start/end label pair: "Mar" when equal, "Mar-Apr" when
// they differ.
func span(start, end string) string {
	if start == end {
		return start
	}
	return start + "-" + end
}

func writeSpan(b *strings.Builder, class, text string) {
	b.WriteString(`<span class="` + class + `">`)
	b.WriteString(html.EscapeString(text))
	b.WriteString(`</span>`)
}

// writeLink emits an anchor, or a plain span when there is no link target.
func writeLink(b *strings.Builder, class, href, text string) {
	if href == "" {
		writeSpan(b, class, text)
		return
	}
	b.WriteString(`<a class="` + class + `" href="`)
	b.WriteString(html.EscapeString(href))
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(text))
	b.WriteString(`</a>`)
}
