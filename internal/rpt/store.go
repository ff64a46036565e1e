package rpt

import "sync"

// WeekStore holds the weekly plans of the current session. It is
// replaced wholesale by each successful extraction and never persisted;
// saved daily plans embed their week and do not reference this store.
type WeekStore struct {
	mu    sync.RWMutex
	weeks []WeeklyPlan
}

// NewWeekStore creates an empty WeekStore.
func NewWeekStore() *WeekStore {
	return &WeekStore{}
}

// Replace discards the current sequence and installs weeks in its place.
func (s *WeekStore) Replace(weeks []WeeklyPlan) {
	cp := make([]WeeklyPlan, len(weeks))
	copy(cp, weeks)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.weeks = cp
}

// List returns a copy of the current sequence in stored order.
func (s *WeekStore) List() []WeeklyPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := make([]WeeklyPlan, len(s.weeks))
	copy(cp, s.weeks)
	return cp
}

// Get returns the first week with the given number.
func (s *WeekStore) Get(weekNumber int) (WeeklyPlan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.weeks {
		if w.WeekNumber == weekNumber {
			return w, true
		}
	}
	return WeeklyPlan{}, false
}

// Len returns the number of stored weeks.
func (s *WeekStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.weeks)
}
