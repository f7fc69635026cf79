package pipeline

import (
	"strconv"
	"time"

	"eventcal/internal/feed"
	appLog "eventcal/internal/log"
	"eventcal/internal/model"
)

// ParseQuery builds the immutable selection parameters from element
// attributes. Every attribute is optional: absent or malformed range bounds
// are unbounded, a missing or invalid count falls back to the default, and
// show-year is true only for the literal "true".
func ParseQuery(attr func(name string) string, loc *time.Location) model.Query {
	q := model.Query{Count: model.DefaultCount}

	if v := attr("begin"); v != "" {
		if t, _, err := model.ParseStamp(v, false, loc); err == nil {
			q.Begin = t
		} else {
			appLog.Debug("ignoring unparseable begin attribute", "value", v)
		}
	}
	if v := attr("end"); v != "" {
		if t, _, err := model.ParseStamp(v, true, loc); err == nil {
			q.End = t
		} else {
			appLog.Debug("ignoring unparseable end attribute", "value", v)
		}
	}
	if v := attr("count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			q.Count = n
		}
	}

	q.ShowYear = attr("show-year") == "true"
	q.Tags = feed.SplitTags(attr("tags"))
	q.Categories = feed.SplitCategories(attr("categories"))

	return q
}
