package event

import (
	"sort"
	"time"

	"eventcal/internal/feed"
	appLog "eventcal/internal/log"
	"eventcal/internal/model"
	"eventcal/internal/report"
)

// InvariantError marks a should-never-happen state: a feed item that passed
// the presence checks but carries a timestamp that does not parse, or an
// event reaching the formatter with a zero instant. Callers can assert on
// it with errors.As.
type InvariantError struct {
	Detail string
}

func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Detail
}

// Select turns raw feed items into the ordered event list for one widget.
//
// Items missing a start or an end are dropped silently. Survivors are kept
// when they overlap the query window, sorted ascending by start (stable, so
// ties keep feed order), and truncated to q.Count.
//
// A present-but-unparseable timestamp is reported to rep and returned as an
// *InvariantError; no partial result is produced.
func Select(items []feed.Item, q model.Query, loc *time.Location, rep report.Reporter) ([]model.Event, error) {
	selected := make([]model.Event, 0, len(items))

	for _, it := range items {
		if it.Start == "" || it.End == "" {
			continue
		}

		start, startHasTime, err := model.ParseStamp(it.Start, false, loc)
		if err != nil {
			return nil, invariant(rep, "event start did not parse: "+it.Start)
		}
		end, endHasTime, err := model.ParseStamp(it.End, true, loc)
		if err != nil {
			return nil, invariant(rep, "event end did not parse: "+it.End)
		}

		if !Overlaps(start, end, q.Begin, q.End) {
			continue
		}

		selected = append(selected, model.Event{
			Start:        start,
			End:          end,
			StartHasTime: startHasTime,
			EndHasTime:   endHasTime,
			Title:        it.Title,
			Description:  it.Description,
			Link:         it.Link,
		})
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Start.Before(selected[j].Start)
	})

	count := q.Count
	if count > len(selected) {
		count = len(selected)
	}
	if count < 0 {
		count = 0
	}
	return selected[:count], nil
}

func invariant(rep report.Reporter, detail string) error {
	err := &InvariantError{Detail: detail}
	appLog.Error("event selection invariant violated", err)
	if rep != nil {
		rep.Report(err.Error())
	}
	return err
}
