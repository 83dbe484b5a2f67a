package filter

import (
	"strings"
	"time"
)

// DateMode selects how a DateFilter compares record dates.
type DateMode string

const (
	DateBefore  DateMode = "before"
	DateAfter   DateMode = "after"
	DateBetween DateMode = "between"
)

// DateFilter keeps records strictly before, strictly after or strictly
// inside a range. A filter missing the value(s) its mode needs matches nothing.
type DateFilter struct {
	Mode  DateMode
	Value *time.Time
	Range [2]*time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseDate accepts the ISO-like dates produced by the extraction pipeline.
// Dates without a zone are read as UTC.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Matches reports whether the raw record date passes the filter.
// Unparseable record dates never match.
func (f DateFilter) Matches(date string) bool {
	d, ok := ParseDate(date)
	if !ok {
		return false
	}
	switch f.Mode {
	case DateBefore:
		return f.Value != nil && d.Before(*f.Value)
	case DateAfter:
		return f.Value != nil && d.After(*f.Value)
	case DateBetween:
		from, to := f.Range[0], f.Range[1]
		return from != nil && to != nil && d.After(*from) && d.Before(*to)
	default:
		return false
	}
}
