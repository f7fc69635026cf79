package feed

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	appLog "eventcal/internal/log"
)

const (
	timedLayout = "2006-01-02T15:04:05"
	dateLayout  = "2006-01-02"

	// Safety cap on recurrence expansion per VEVENT.
	maxOccurrencesPerEvent = 1000
)

// ParseICS decodes an ICS payload into raw items, expanding recurring
// events inside [rangeBegin, rangeEnd]. A zero bound falls back to a year
// around now, recurring events cannot be expanded over an unbounded window.
//
// All-day events emit date-only strings so downstream rendering keeps them
// without a time line; DTEND is exclusive for all-day events and is pulled
// back to the last covered day.
func ParseICS(body []byte, rangeBegin, rangeEnd time.Time, loc *time.Location) ([]Item, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.UTC
	}
	if rangeBegin.IsZero() {
		rangeBegin = time.Now().In(loc).AddDate(-1, 0, 0)
	}
	if rangeEnd.IsZero() {
		rangeEnd = time.Now().In(loc).AddDate(1, 0, 0)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0)
	for _, ve := range cal.Events() {
		evItems, perr := icsEventItems(ve, rangeBegin, rangeEnd, loc)
		if perr != nil {
			// Skip this VEVENT but keep the rest of the calendar.
			appLog.Error("ics vevent skipped", perr)
			continue
		}
		items = append(items, evItems...)
	}

	appLog.Debug("ics parse completed", "item_count", len(items))
	return items, nil
}

func icsEventItems(ve *ical.VEvent, rangeBegin, rangeEnd time.Time, loc *time.Location) ([]Item, error) {
	start, err := ve.GetStartAt()
	if err != nil {
		return nil, errors.New("vevent missing DTSTART")
	}
	end, eerr := ve.GetEndAt()
	if eerr != nil {
		end = start
	}

	base := Item{}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		base.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		base.Description = p.Value
	}
	if p := ve.GetProperty("URL"); p != nil {
		base.Link = p.Value
	}

	allDay := false
	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		if params := p.ICalParameters; params != nil {
			if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
				allDay = true
			}
		}
		if !strings.Contains(p.Value, "T") {
			allDay = true
		}
	}

	var raw string
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		raw = p.Value
	}

	if raw == "" {
		return []Item{stampItem(base, start, end, allDay, loc)}, nil
	}

	r, err := rrule.StrToRRule(raw)
	if err != nil {
		return nil, err
	}
	r.DTStart(start)

	var set rrule.Set
	set.RRule(r)

	// EXDATE may appear multiple times and each may carry a list.
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, perr := parseICSTime(part, start.Location()); perr == nil {
				set.ExDate(t)
			}
		}
	}

	occTimes := set.Between(rangeBegin.In(start.Location()), rangeEnd.In(start.Location()), true)
	if len(occTimes) > maxOccurrencesPerEvent {
		occTimes = occTimes[:maxOccurrencesPerEvent]
		appLog.Error("ics recurrence truncated", errors.New("occurrence cap reached"), "cap", maxOccurrencesPerEvent)
	}

	dur := end.Sub(start)
	out := make([]Item, 0, len(occTimes))
	for _, occStart := range occTimes {
		occEnd := occStart.Add(dur)
		out = append(out, stampItem(base, occStart, occEnd, allDay, loc))
	}
	return out, nil
}

// stampItem fills the Start/End strings of base from concrete instants.
func stampItem(base Item, start, end time.Time, allDay bool, loc *time.Location) Item {
	start = start.In(loc)
	end = end.In(loc)

	if allDay {
		// Pull the exclusive DTEND back to the last covered day.
		if end.After(start) {
			end = end.AddDate(0, 0, -1)
		}
		base.Start = start.Format(dateLayout)
		base.End = end.Format(dateLayout)
		return base
	}

	base.Start = start.Format(timedLayout)
	base.End = end.Format(timedLayout)
	return base
}

// parseICSTime handles the basic EXDATE value forms: UTC date-time, local
// date-time and bare date.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, loc)
	}
	return time.ParseInLocation("20060102", v, loc)
}
