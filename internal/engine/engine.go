// Package engine decides which catalog announcements are visible at a given instant.
package engine

import (
	"time"

	"github.com/hamed0406/announcer/internal/domain"
)

// Set is a set of dismissed announcement IDs.
type Set map[string]struct{}

func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Engine filters a catalog against the calendar in Location.
type Engine struct {
	Location *time.Location
}

func New(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{Location: loc}
}

// Visible returns the records of catalog that should show at now, in catalog order.
// It never mutates its inputs; a nil dismissed set means nothing is dismissed.
func (e *Engine) Visible(catalog []domain.Announcement, dismissed Set, now time.Time) []domain.Announcement {
	today := domain.StartOfDay(now, e.Location)
	out := make([]domain.Announcement, 0, len(catalog))
	for _, a := range catalog {
		if e.Eligible(a, dismissed, today) {
			out = append(out, a)
		}
	}
	return out
}

// Eligible applies the per-record rules against an already normalised day.
func (e *Engine) Eligible(a domain.Announcement, dismissed Set, today time.Time) bool {
	if !a.Active {
		return false
	}
	if a.Validate() != nil {
		return false
	}
	start, ok := domain.ParseDay(a.StartDate, e.Location)
	if !ok {
		return false
	}
	end, ok := domain.ParseDay(a.EndDate, e.Location)
	if !ok {
		return false
	}
	if today.Before(start) || today.After(domain.EndOfDay(end)) {
		return false
	}
	if a.Dismissible && dismissed.Has(a.ID) {
		return false
	}
	return true
}
