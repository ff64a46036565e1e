package archive

import (
	"sort"

	"github.com/cikgulab/cikguplanner/internal/rph"
)

// Lister is the archive surface the calendar reads from.
type Lister interface {
	List() []rph.DailyPlan
}

// Calendar is a derived, read-only view over the archive grouping saved
// RPHs by their date string. It is recomputed from List() on every query
// and holds no state of its own, so it can never drift from the archive.
type Calendar struct {
	archive Lister
}

// NewCalendar creates a Calendar over the given archive.
func NewCalendar(archive Lister) *Calendar {
	return &Calendar{archive: archive}
}

// ByDate returns the plans saved for the given date, newest first.
func (c *Calendar) ByDate(date string) []rph.DailyPlan {
	if date == "" {
		return nil
	}
	var out []rph.DailyPlan
	for _, p := range c.archive.List() {
		if p.Date == date {
			out = append(out, p)
		}
	}
	return out
}

// Dates returns the sorted set of distinct dates that have saved plans.
func (c *Calendar) Dates() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range c.archive.List() {
		if p.Date == "" {
			continue
		}
		if _, ok := seen[p.Date]; ok {
			continue
		}
		seen[p.Date] = struct{}{}
		out = append(out, p.Date)
	}
	sort.Strings(out)
	return out
}

// Unscheduled returns plans saved without a date, newest first. They are
// browsable but sit outside the calendar grid.
func (c *Calendar) Unscheduled() []rph.DailyPlan {
	var out []rph.DailyPlan
	for _, p := range c.archive.List() {
		if p.Date == "" {
			out = append(out, p)
		}
	}
	return out
}
