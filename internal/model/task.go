package model

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
	StatusArchived  TaskStatus = "archived"
)

// ChecklistItem is one line of a task's checklist.
type ChecklistItem struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Task represents a single item in the planner. A nil ScheduledFor puts it on the
// scratch pad.
type Task struct {
	ID               uint `gorm:"primaryKey"`
	Title            string
	Description      string
	URL              string
	Checklist        []ChecklistItem `gorm:"serializer:json"`
	ScheduledFor     *time.Time      `gorm:"index"`
	Status           TaskStatus      `gorm:"index;size:16"`
	Position         int
	CompletedAt      *time.Time
	Rollovers        int
	LastRolloverDate *time.Time
	GeneratedFrom    *uint `gorm:"index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (t *Task) IsPending() bool {
	return t.Status == StatusPending
}

// OnScratchPad reports whether the task has no date.
func (t *Task) OnScratchPad() bool {
	return t.ScheduledFor == nil
}

// ChecklistDone counts finished checklist items.
func (t *Task) ChecklistDone() int {
	n := 0
	for _, item := range t.Checklist {
		if item.Done {
			n++
		}
	}
	return n
}
