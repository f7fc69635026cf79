package model

import (
	"errors"
	"strings"
	"time"
)

// Event is a single calendar entry after its feed timestamps have been
// parsed. Start and End are always valid non-zero instants once an Event
// exists; feed items missing either value never become one. Start <= End is
// not enforced, the feed's ordering is passed through as-is.
type Event struct {
	Start time.Time
	End   time.Time

	// StartHasTime / EndHasTime record whether the feed value carried a
	// time-of-day component. Bare dates are normalized at parse time
	// (start to 00:00, end to 23:59) and these flags keep the formatter
	// from inventing a time line for all-day events.
	StartHasTime bool
	EndHasTime   bool

	Title       string
	Description string
	Link        string
}

// Query holds the per-widget selection parameters. A zero Begin or End means
// unbounded on that side. Built once per render and immutable afterwards.
type Query struct {
	Begin    time.Time
	End      time.Time
	Count    int
	ShowYear bool

	Tags       []string
	Categories []string
}

// DefaultCount is the number of events shown when no count is configured.
const DefaultCount = 2

// Widget is a render target declared in the config file. The string fields
// mirror the element attributes so that configured widgets and ad-hoc HTTP
// requests go through the same parsing path.
type Widget struct {
	ID         string `yaml:"id" json:"id"`
	Begin      string `yaml:"begin" json:"begin"`
	End        string `yaml:"end" json:"end"`
	Count      string `yaml:"count" json:"count"`
	Tags       string `yaml:"tags" json:"tags"`
	Categories string `yaml:"categories" json:"categories"`
	ShowYear   string `yaml:"show_year" json:"show_year"`

	// Out is an optional file path the rendered fragment is written to in
	// snapshot mode.
	Out string `yaml:"out,omitempty" json:"out,omitempty"`
}

var errEmptyStamp = errors.New("empty timestamp")

var stampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

const dateLayout = "2006-01-02"

// ParseStamp parses an ISO-8601 date or date-time string. hasTime reports
// whether the value carried a time-of-day. Bare dates normalize to 00:00 of
// the day, or 23:59 when asEnd is set, so that range comparisons treat a
// date-only end as lasting through its whole day.
func ParseStamp(value string, asEnd bool, loc *time.Location) (t time.Time, hasTime bool, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, errEmptyStamp
	}
	if loc == nil {
		loc = time.UTC
	}

	if strings.Contains(value, "T") {
		for _, layout := range stampLayouts {
			if t, err = time.ParseInLocation(layout, value, loc); err == nil {
				return t, true, nil
			}
		}
		return time.Time{}, false, err
	}

	t, err = time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, false, err
	}
	if asEnd {
		// Construct 23:59 on the same calendar day. Adding a duration
		// would overshoot into the next day when a DST transition
		// shortens this one.
		t = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 0, 0, loc)
	}
	return t, false, nil
}
