package model

import (
	"time"

	"day-planner/internal/recurrence"
)

// Person is someone whose birthday the planner keeps track of.
type Person struct {
	ID         uint `gorm:"primaryKey"`
	Name       string
	BirthMonth time.Month `gorm:"index:idx_people_birthday"`
	BirthDay   int        `gorm:"index:idx_people_birthday"`
	// BirthYear is zero when unknown.
	BirthYear int
	Notes     string
	// LastAcknowledgedYear is the last year the birthday was acknowledged, so each one
	// is raised once per year.
	LastAcknowledgedYear int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (p *Person) Birthday() recurrence.Birthday {
	return recurrence.Birthday{Month: p.BirthMonth, Day: p.BirthDay, Year: p.BirthYear}
}

// AcknowledgedIn reports whether the birthday was already acknowledged for year.
func (p *Person) AcknowledgedIn(year int) bool {
	return p.LastAcknowledgedYear >= year
}
