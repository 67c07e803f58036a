package core

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical rendering of calendar dates.
const DateLayout = "2006-01-02"

// importDateLayouts are tried in order; the first match wins.
var importDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"01-02-2006",
	"02-01-2006",
}

// ParseDate parses s against the accepted import layouts. An empty string
// yields a nil date, which is legal.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// NewDate returns midnight UTC of the given calendar day.
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// DateOf drops the time of day, keeping the calendar date of t.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Window is an inclusive [Start, End] range of calendar days. Filtering only
// applies when both ends are set; otherwise the window spans all time.
type Window struct {
	Start time.Time
	End   time.Time
}

// AllTime is the window that does not filter anything.
var AllTime = Window{}

func NewWindow(start, end time.Time) Window {
	return Window{Start: start, End: end}
}

// Bounded reports whether the window actually filters.
func (w Window) Bounded() bool {
	return !w.Start.IsZero() && !w.End.IsZero()
}

// Contains compares calendar days, so Start == End keeps the whole day.
func (w Window) Contains(t time.Time) bool {
	if !w.Bounded() {
		return true
	}
	day := DateOf(t)
	return !day.Before(DateOf(w.Start)) && !day.After(DateOf(w.End))
}

// ContainsDate treats an absent date as outside any bounded window.
func (w Window) ContainsDate(t *time.Time) bool {
	if !w.Bounded() {
		return true
	}
	if t == nil {
		return false
	}
	return w.Contains(*t)
}

func (w Window) String() string {
	if !w.Bounded() {
		return "all"
	}
	return w.Start.Format(DateLayout) + ".." + w.End.Format(DateLayout)
}
