// Package recurrence decides on which logical days a recurring template fires.
package recurrence

import (
	"time"

	"day-planner/internal/apperr"
	"day-planner/internal/calendar"
)

// Kind tags the pattern variants.
type Kind string

const (
	KindDaily    Kind = "daily"
	KindWeekly   Kind = "weekly"
	KindMonthly  Kind = "monthly"
	KindYearly   Kind = "yearly"
	KindInterval Kind = "interval"
)

// Kinds lists every supported variant in display order.
var Kinds = []Kind{KindDaily, KindWeekly, KindMonthly, KindYearly, KindInterval}

// LastDay as Monthly.Day means the last day of each month.
const LastDay = -1

// Pattern is one of Daily, Weekly, Monthly, Yearly or Interval. The unexported methods
// keep the set closed.
type Pattern interface {
	Kind() Kind
	matches(day calendar.DayKey) bool
	validate() error
}

// Daily matches every day.
type Daily struct{}

// Weekly matches the listed weekdays. With Interval > 1 only every Interval-th week,
// counted from the week of Anchor, qualifies.
type Weekly struct {
	Days     []time.Weekday  `json:"daysOfWeek"`
	Interval int             `json:"weeklyInterval,omitempty"`
	Anchor   calendar.DayKey `json:"weeklyAnchor,omitempty"`
}

// Monthly matches one day of the month, clamped to the month's length, or LastDay.
type Monthly struct {
	Day int `json:"dayOfMonth"`
}

// Yearly matches one date per year, clamped like Monthly (Feb 29 fires on Feb 28).
type Yearly struct {
	Month time.Month `json:"yearlyMonth"`
	Day   int        `json:"yearlyDay"`
}

// Interval matches every Days days starting at Anchor.
type Interval struct {
	Days   int             `json:"intervalDays"`
	Anchor calendar.DayKey `json:"intervalAnchor"`
}

func (Daily) Kind() Kind    { return KindDaily }
func (Weekly) Kind() Kind   { return KindWeekly }
func (Monthly) Kind() Kind  { return KindMonthly }
func (Yearly) Kind() Kind   { return KindYearly }
func (Interval) Kind() Kind { return KindInterval }

func (Daily) matches(calendar.DayKey) bool { return true }

func (p Weekly) matches(day calendar.DayKey) bool {
	if !p.hasWeekday(day.Weekday()) {
		return false
	}
	every := p.every()
	if every == 1 {
		return true
	}
	// Never invent an anchor: a multi-week pattern without one is not due.
	if p.Anchor.IsZero() {
		return false
	}
	days := calendar.DaysBetween(p.Anchor, day)
	if days < 0 {
		return false
	}
	return (days/7)%every == 0
}

func (p Weekly) hasWeekday(wd time.Weekday) bool {
	for _, d := range p.Days {
		if d == wd {
			return true
		}
	}
	return false
}

func (p Weekly) every() int {
	if p.Interval < 1 {
		return 1
	}
	return p.Interval
}

func (p Monthly) matches(day calendar.DayKey) bool {
	last := calendar.DaysIn(day.Year(), day.Month())
	target := p.Day
	if target == LastDay || target > last {
		target = last
	}
	return day.Day() == target
}

func (p Yearly) matches(day calendar.DayKey) bool {
	if day.Month() != p.Month {
		return false
	}
	last := calendar.DaysIn(day.Year(), day.Month())
	target := p.Day
	if target > last {
		target = last
	}
	return day.Day() == target
}

func (p Interval) matches(day calendar.DayKey) bool {
	if p.Days < 1 || p.Anchor.IsZero() {
		return false
	}
	days := calendar.DaysBetween(p.Anchor, day)
	return days >= 0 && days%p.Days == 0
}

func (Daily) validate() error { return nil }

func (p Weekly) validate() error {
	if len(p.Days) == 0 {
		return apperr.Validation("weekly pattern needs at least one weekday")
	}
	for _, d := range p.Days {
		if d < time.Sunday || d > time.Saturday {
			return apperr.Validation("weekday %d out of range 0..6", int(d))
		}
	}
	if p.Interval < 0 {
		return apperr.Validation("weekly interval must be at least 1, got %d", p.Interval)
	}
	if !p.Anchor.IsZero() && !p.Anchor.Valid() {
		return apperr.Validation("invalid weekly anchor %q", p.Anchor)
	}
	if p.every() > 1 && p.Anchor.IsZero() {
		return apperr.New(apperr.CodeAmbiguousSchedule, "every-n-weeks pattern needs an anchor date")
	}
	return nil
}

func (p Monthly) validate() error {
	if p.Day != LastDay && (p.Day < 1 || p.Day > 31) {
		return apperr.Validation("day of month must be 1..31 or -1 for the last day, got %d", p.Day)
	}
	return nil
}

func (p Yearly) validate() error {
	if p.Month < time.January || p.Month > time.December {
		return apperr.Validation("month must be 1..12, got %d", int(p.Month))
	}
	if p.Day < 1 || p.Day > 31 {
		return apperr.Validation("day must be 1..31, got %d", p.Day)
	}
	return nil
}

func (p Interval) validate() error {
	if p.Days < 1 {
		return apperr.Validation("interval must be at least 1 day, got %d", p.Days)
	}
	if p.Anchor.IsZero() {
		return apperr.Validation("interval pattern needs an anchor date")
	}
	if !p.Anchor.Valid() {
		return apperr.Validation("invalid interval anchor %q", p.Anchor)
	}
	return nil
}

// Validate checks the fields of p for its variant.
func Validate(p Pattern) error {
	if p == nil {
		return apperr.Validation("recurrence pattern is required")
	}
	return p.validate()
}

// Matches reports whether p fires on day, ignoring template state.
func Matches(p Pattern, day calendar.DayKey) (bool, error) {
	if p == nil {
		return false, apperr.Validation("recurrence pattern is required")
	}
	if !day.Valid() {
		return false, apperr.Validation("invalid day %q", day)
	}
	return p.matches(day), nil
}
