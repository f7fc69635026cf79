// Package event holds the selection core: the range overlap test and the
// filter/sort/truncate pass that turns raw feed items into display events.
package event

import "time"

// Overlaps reports whether [evStart, evEnd] intersects [rangeBegin,
// rangeEnd]. A zero range bound is unbounded on that side. Events touching
// a boundary are included.
//
// Bare-date normalization (start at 00:00, end at 23:59) happens when the
// timestamps are parsed, so this is a pure comparison.
func Overlaps(evStart, evEnd, rangeBegin, rangeEnd time.Time) bool {
	if !rangeEnd.IsZero() && evStart.After(rangeEnd) {
		return false
	}
	if !rangeBegin.IsZero() && evEnd.Before(rangeBegin) {
		return false
	}
	return true
}
