package render

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"eventcal/internal/model"
)

// Preview renders the selection as an aligned plain-text table for the
// -dump debug mode. Column widths are display widths, so CJK titles line
// up too.
func Preview(events []model.Event, style Style, showYear bool) string {
	if len(events) == 0 {
		return NoEvents + "\n"
	}

	rows := [][]string{{"DATE", "TIME", "TITLE"}}
	for _, ev := range events {
		date := span(style.month(ev.Start), style.month(ev.End)) + " " +
			span(strconv.Itoa(ev.Start.Day()), strconv.Itoa(ev.End.Day()))
		if showYear {
			date += " " + span(strconv.Itoa(ev.Start.Year()), strconv.Itoa(ev.End.Year()))
		}

		clock := ""
		if ev.StartHasTime && ev.EndHasTime {
			clock = style.clock(ev.Start) + " - " + style.clock(ev.End)
		}

		rows = append(rows, []string{date, clock, ev.Title})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
