// Package calendar maps instants onto logical days: 24-hour windows that start at a
// configured hour in a single configured timezone instead of at midnight.
package calendar

import (
	"time"

	"day-planner/internal/apperr"
)

// scheduleHour is the local hour used when a task is placed on a date. With day start
// hours below noon it always falls inside the logical day of that date.
const scheduleHour = 12

// Window is the half-open interval [Start, End) of one logical day.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Midpoint is the instant halfway through the window.
func (w Window) Midpoint() time.Time {
	return w.Start.Add(w.End.Sub(w.Start) / 2)
}

// Calendar holds the configured zone and day start hour.
type Calendar struct {
	loc       *time.Location
	startHour int
}

// New validates startHour (0..11) and returns a calendar for loc.
func New(loc *time.Location, startHour int) (*Calendar, error) {
	if loc == nil {
		return nil, apperr.Validation("calendar: timezone is required")
	}
	if startHour < 0 || startHour > 11 {
		return nil, apperr.Validation("calendar: day start hour must be between 0 and 11, got %d", startHour)
	}
	return &Calendar{loc: loc, startHour: startHour}, nil
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

func (c *Calendar) StartHour() int {
	return c.startHour
}

// Key returns the logical day t belongs to. Local times before the start hour
// still count toward the previous date.
func (c *Calendar) Key(t time.Time) DayKey {
	local := t.In(c.loc)
	year, month, day := local.Date()
	if local.Hour() < c.startHour {
		day--
	}
	return DayKeyOf(year, month, day)
}

// Window returns the logical day containing t.
func (c *Calendar) Window(t time.Time) Window {
	return c.WindowOf(c.Key(t))
}

// Today is Window under the name the day views use.
func (c *Calendar) Today(now time.Time) Window {
	return c.Window(now)
}

// Tomorrow is the window that starts where today's ends.
func (c *Calendar) Tomorrow(now time.Time) Window {
	return c.WindowOf(c.Key(now).AddDays(1))
}

// WindowOf returns the window of a day key. End is the next date's start hour, which is
// start+24h except across DST changes, so consecutive windows always tile.
func (c *Calendar) WindowOf(k DayKey) Window {
	d := k.Date()
	start := time.Date(d.Year(), d.Month(), d.Day(), c.startHour, 0, 0, 0, c.loc)
	end := time.Date(d.Year(), d.Month(), d.Day()+1, c.startHour, 0, 0, 0, c.loc)
	return Window{Start: start, End: end}
}

// ScheduleInstant is the canonical instant stored when a task is placed on a date:
// local noon, far from either day boundary.
func (c *Calendar) ScheduleInstant(k DayKey) time.Time {
	d := k.Date()
	return time.Date(d.Year(), d.Month(), d.Day(), scheduleHour, 0, 0, 0, c.loc)
}

// BucketOf returns the ordering bucket of a scheduled instant; nil is the scratch pad.
func (c *Calendar) BucketOf(scheduledFor *time.Time) DayKey {
	if scheduledFor == nil {
		return ""
	}
	return c.Key(*scheduledFor)
}
