package recurrence

import (
	"fmt"
	"time"

	"day-planner/internal/apperr"
	"day-planner/internal/calendar"
)

// Birthday is a yearly date with an optional birth year (zero when unknown). It falls on
// the same days as Yearly, so Feb 29 is celebrated on Feb 28 in common years.
type Birthday struct {
	Month time.Month
	Day   int
	Year  int
}

// Validate checks the date exists and, with a known year, is not after today.
func (b Birthday) Validate(today calendar.DayKey) error {
	if b.Month < time.January || b.Month > time.December {
		return apperr.Validation("birth month must be 1..12, got %d", int(b.Month))
	}
	// 2000 is a leap year, so Feb 29 passes here.
	if b.Day < 1 || b.Day > calendar.DaysIn(2000, b.Month) {
		return apperr.Validation("%s has no day %d", b.Month, b.Day)
	}
	if b.Year == 0 {
		return nil
	}
	if b.Year < 1 || b.Day > calendar.DaysIn(b.Year, b.Month) {
		return apperr.Validation("%s %d %d is not a date", b.Month, b.Day, b.Year)
	}
	if calendar.DayKeyOf(b.Year, b.Month, b.Day).After(today) {
		return apperr.Validation("birth date %04d-%02d-%02d is in the future", b.Year, int(b.Month), b.Day)
	}
	return nil
}

// On reports whether day is the birthday.
func (b Birthday) On(day calendar.DayKey) bool {
	return Yearly{Month: b.Month, Day: b.Day}.matches(day)
}

// In returns the day the birthday falls on in year.
func (b Birthday) In(year int) calendar.DayKey {
	day := b.Day
	if last := calendar.DaysIn(year, b.Month); day > last {
		day = last
	}
	return calendar.DayKeyOf(year, b.Month, day)
}

// Next returns the first birthday on or after from.
func (b Birthday) Next(from calendar.DayKey) calendar.DayKey {
	next := b.In(from.Year())
	if next.Before(from) {
		next = b.In(from.Year() + 1)
	}
	return next
}

// AgeOn returns the completed years on day, and false when the birth year is unknown.
func (b Birthday) AgeOn(day calendar.DayKey) (int, bool) {
	if b.Year == 0 {
		return 0, false
	}
	age := day.Year() - b.Year
	if day.Before(b.In(day.Year())) {
		age--
	}
	return age, true
}

// TurningOn returns the age reached on the next birthday on or after day.
func (b Birthday) TurningOn(day calendar.DayKey) (int, bool) {
	if b.Year == 0 {
		return 0, false
	}
	return b.Next(day).Year() - b.Year, true
}

func (b Birthday) String() string {
	return fmt.Sprintf("%s %d", b.Month, b.Day)
}
