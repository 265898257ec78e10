package calendar

import (
	"fmt"
	"time"

	"day-planner/internal/apperr"
)

const dayKeyLayout = "2006-01-02"

// DayKey identifies a calendar date as YYYY-MM-DD. The zero value means "no day".
// Keys order lexically in date order, so plain string comparison is safe.
type DayKey string

// ParseDayKey validates s as a YYYY-MM-DD date.
func ParseDayKey(s string) (DayKey, error) {
	t, err := time.Parse(dayKeyLayout, s)
	if err != nil {
		return "", apperr.Validation("invalid date %q, expected YYYY-MM-DD", s)
	}
	return DayKey(t.Format(dayKeyLayout)), nil
}

// DayKeyOf normalizes overflowing fields the way time.Date does (Jan 32 -> Feb 1).
func DayKeyOf(year int, month time.Month, day int) DayKey {
	return DayKey(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(dayKeyLayout))
}

// Date returns the key's midnight in UTC. UTC has no DST, so day arithmetic on it is exact.
func (k DayKey) Date() time.Time {
	t, err := time.Parse(dayKeyLayout, string(k))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (k DayKey) IsZero() bool {
	return k == ""
}

func (k DayKey) String() string {
	return string(k)
}

func (k DayKey) Valid() bool {
	_, err := time.Parse(dayKeyLayout, string(k))
	return err == nil
}

func (k DayKey) AddDays(n int) DayKey {
	return DayKey(k.Date().AddDate(0, 0, n).Format(dayKeyLayout))
}

func (k DayKey) Weekday() time.Weekday {
	return k.Date().Weekday()
}

func (k DayKey) Year() int {
	return k.Date().Year()
}

func (k DayKey) Month() time.Month {
	return k.Date().Month()
}

func (k DayKey) Day() int {
	return k.Date().Day()
}

func (k DayKey) Before(other DayKey) bool {
	return k < other
}

func (k DayKey) After(other DayKey) bool {
	return k > other
}

// DaysBetween counts whole days from a to b; negative when b precedes a.
func DaysBetween(a, b DayKey) int {
	return int(b.Date().Sub(a.Date()).Hours() / 24)
}

// DaysIn returns the length of the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MustDayKey is ParseDayKey for literals known to be valid.
func MustDayKey(s string) DayKey {
	k, err := ParseDayKey(s)
	if err != nil {
		panic(fmt.Sprintf("calendar: %v", err))
	}
	return k
}
