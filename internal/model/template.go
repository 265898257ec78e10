package model

import (
	"time"

	"day-planner/internal/calendar"
	"day-planner/internal/recurrence"
)

// Template is a recurring rule that prompts task creation on the days it fires.
type Template struct {
	ID          uint `gorm:"primaryKey"`
	Title       string
	Description string
	URL         string
	Rule        recurrence.Rule `gorm:"type:text"`
	IsActive    bool            `gorm:"index"`
	// PausedUntil suppresses firing on every day before it.
	PausedUntil calendar.DayKey `gorm:"size:10"`
	// LastGeneratedFor is the last logical day the template was resolved, fired or skipped.
	LastGeneratedFor calendar.DayKey `gorm:"size:10"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (t *Template) Schedule() recurrence.Schedule {
	return recurrence.Schedule{
		Rule:        t.Rule,
		Active:      t.IsActive,
		PausedUntil: t.PausedUntil,
	}
}

// ResolvedFor reports whether the template was already fired or skipped for day or later.
func (t *Template) ResolvedFor(day calendar.DayKey) bool {
	return !t.LastGeneratedFor.IsZero() && !t.LastGeneratedFor.Before(day)
}
