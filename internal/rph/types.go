package rph

import (
	"fmt"
	"time"

	"github.com/cikgulab/cikguplanner/internal/rpt"
)

// DaysOfWeek is the fixed set of school days an RPH can target.
var DaysOfWeek = []string{"Isnin", "Selasa", "Rabu", "Khamis", "Jumaat"}

// IsSchoolDay reports whether day is one of the five school days.
func IsSchoolDay(day string) bool {
	for _, d := range DaysOfWeek {
		if d == day {
			return true
		}
	}
	return false
}

// DailyPlan is one saved RPH: a generated, dated daily lesson plan. The
// source week is embedded, not referenced, because the session week
// store does not outlive archived plans.
type DailyPlan struct {
	ID            string         `json:"id"`
	CreatedAt     time.Time      `json:"createdAt"`
	Week          rpt.WeeklyPlan `json:"weekItem"`
	Day           string         `json:"day"`
	Date          string         `json:"date,omitempty"`
	ClassName     string         `json:"className"`
	Time          string         `json:"time"`
	SelectedField string         `json:"selectedBidang,omitempty"`
	Content       string         `json:"content"`
	JawiContent   *string        `json:"jawiContent,omitempty"`
}

// Request describes one RPH generation. The week record is carried in
// full; the inference service has no access to the session store.
type Request struct {
	Week              rpt.WeeklyPlan `json:"weekItem"`
	Day               string         `json:"day"`
	Date              string         `json:"date,omitempty"`
	ClassName         string         `json:"className"`
	Time              string         `json:"time"`
	SelectedField     string         `json:"selectedBidang,omitempty"`
	AdditionalContext string         `json:"additionalContext,omitempty"`
	RenderJawi        bool           `json:"renderJawi,omitempty"`
}

// Result is the outcome of one generation. JawiContent is nil when Jawi
// rendering was not requested or could not be produced.
type Result struct {
	Content     string  `json:"content"`
	JawiContent *string `json:"jawiContent,omitempty"`
}

// ValidationError reports a bad generation request, caught before any
// inference call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// GenerationError wraps an inference-service failure during RPH
// generation, kept distinct so callers can message it differently from
// extraction or transport failures elsewhere.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating rph: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
