package service

import (
	"context"
	"time"

	"day-planner/internal/calendar"
	"day-planner/internal/model"
)

// TaskStore is the persistence the planner needs for tasks. Implementations return
// apperr NotFound for missing ids and wrap other failures as apperr Store.
type TaskStore interface {
	// FindPendingByDateRange returns pending tasks with start <= scheduledFor < end,
	// ordered by position.
	FindPendingByDateRange(ctx context.Context, start, end time.Time) ([]model.Task, error)
	// FindPendingWithNoDate returns the scratch pad ordered by position.
	FindPendingWithNoDate(ctx context.Context) ([]model.Task, error)
	// FindPendingOverdue returns pending dated tasks scheduled strictly before the
	// instant, ordered by (scheduledFor, createdAt).
	FindPendingOverdue(ctx context.Context, before time.Time) ([]model.Task, error)
	// FindByStatus returns up to limit tasks in status, most recently updated first.
	FindByStatus(ctx context.Context, status model.TaskStatus, limit int) ([]model.Task, error)
	FindByID(ctx context.Context, id uint) (*model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	Save(ctx context.Context, task *model.Task) error
	// FindMaxPositionInBucket returns the highest position among pending tasks in the
	// bucket, and false when the bucket is empty. The zero key is the scratch pad.
	FindMaxPositionInBucket(ctx context.Context, bucket calendar.DayKey) (int, bool, error)
	// SwapPositions exchanges the positions of a and b. Both writes apply or neither does.
	SwapPositions(ctx context.Context, a, b *model.Task) error
}

// TemplateStore is the persistence the planner needs for recurring templates.
type TemplateStore interface {
	FindAllActive(ctx context.Context) ([]model.Template, error)
	FindAll(ctx context.Context) ([]model.Template, error)
	FindByID(ctx context.Context, id uint) (*model.Template, error)
	Create(ctx context.Context, tmpl *model.Template) error
	Save(ctx context.Context, tmpl *model.Template) error
	Delete(ctx context.Context, id uint) error
}

// PersonStore is the persistence for tracked birthdays.
type PersonStore interface {
	// FindAll returns everyone ordered by birth month and day.
	FindAll(ctx context.Context) ([]model.Person, error)
	FindByID(ctx context.Context, id uint) (*model.Person, error)
	Create(ctx context.Context, person *model.Person) error
	Save(ctx context.Context, person *model.Person) error
	Delete(ctx context.Context, id uint) error
}
