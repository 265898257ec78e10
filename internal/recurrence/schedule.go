package recurrence

import (
	"day-planner/internal/apperr"
	"day-planner/internal/calendar"
)

// Horizon bounds NextOccurrence. 400 days covers at least one full yearly cycle.
const Horizon = 400

// Schedule is the slice of a template the evaluator reads.
type Schedule struct {
	Rule        Rule
	Active      bool
	PausedUntil calendar.DayKey
}

// IsDue reports whether the template fires on day. Inactive templates and days before
// PausedUntil are never due.
func (s Schedule) IsDue(day calendar.DayKey) (bool, error) {
	if !s.Active {
		return false, nil
	}
	if !s.PausedUntil.IsZero() && day.Before(s.PausedUntil) {
		return false, nil
	}
	if err := s.Rule.Err(); err != nil {
		return false, err
	}
	return Matches(s.Rule.Pattern, day)
}

// NextOccurrence scans forward day by day from max(from, PausedUntil) and returns the
// first due day, or false when nothing fires within Horizon days.
func (s Schedule) NextOccurrence(from calendar.DayKey) (calendar.DayKey, bool, error) {
	if err := s.Rule.Err(); err != nil {
		return "", false, err
	}
	if s.Rule.Pattern == nil {
		return "", false, apperr.Validation("recurrence pattern is required")
	}
	if !from.Valid() {
		return "", false, apperr.Validation("invalid day %q", from)
	}
	if !s.Active {
		return "", false, nil
	}
	start := from
	if s.PausedUntil.After(start) {
		start = s.PausedUntil
	}
	for i := 0; i < Horizon; i++ {
		day := start.AddDays(i)
		due, err := s.IsDue(day)
		if err != nil {
			return "", false, err
		}
		if due {
			return day, true, nil
		}
	}
	return "", false, nil
}
