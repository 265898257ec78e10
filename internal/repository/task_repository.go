package repository

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"day-planner/internal/apperr"
	"day-planner/internal/calendar"
	"day-planner/internal/model"
)

// TaskRepository stores tasks in SQLite. The calendar maps day buckets onto
// scheduled_for ranges.
type TaskRepository struct {
	db  *gorm.DB
	cal *calendar.Calendar
}

func NewTaskRepository(db *gorm.DB, cal *calendar.Calendar) *TaskRepository {
	return &TaskRepository{db: db, cal: cal}
}

func (r *TaskRepository) pending(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Task{}).Where("status = ?", model.StatusPending)
}

func (r *TaskRepository) FindPendingByDateRange(ctx context.Context, start, end time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.pending(ctx).
		Where("scheduled_for >= ? AND scheduled_for < ?", start.UTC(), end.UTC()).
		Order("position ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, apperr.Store("list tasks by date", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindPendingWithNoDate(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.pending(ctx).
		Where("scheduled_for IS NULL").
		Order("position ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, apperr.Store("list scratch pad", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindPendingOverdue(ctx context.Context, before time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.pending(ctx).
		Where("scheduled_for IS NOT NULL AND scheduled_for < ?", before.UTC()).
		Order("scheduled_for ASC, created_at ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, apperr.Store("list overdue tasks", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByStatus(ctx context.Context, status model.TaskStatus, limit int) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("updated_at DESC, id DESC").
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, apperr.Store("list tasks by status", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, storeErr("find task", "task", id, err)
	}
	return &task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	normalize(task)
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return apperr.Store("create task", err)
	}
	return nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	normalize(task)
	res := r.db.WithContext(ctx).Save(task)
	if res.Error != nil {
		return apperr.Store("save task", res.Error)
	}
	return nil
}

func (r *TaskRepository) FindMaxPositionInBucket(ctx context.Context, bucket calendar.DayKey) (int, bool, error) {
	q := r.pending(ctx).Select("MAX(position)")
	if bucket.IsZero() {
		q = q.Where("scheduled_for IS NULL")
	} else {
		w := r.cal.WindowOf(bucket)
		q = q.Where("scheduled_for >= ? AND scheduled_for < ?", w.Start.UTC(), w.End.UTC())
	}
	var max sql.NullInt64
	if err := q.Row().Scan(&max); err != nil {
		return 0, false, apperr.Store("max position", err)
	}
	if !max.Valid {
		return 0, false, nil
	}
	return int(max.Int64), true, nil
}

// SwapPositions exchanges the two positions in one transaction.
func (r *TaskRepository) SwapPositions(ctx context.Context, a, b *model.Task) error {
	var posA, posB int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var first, second model.Task
		if err := tx.First(&first, a.ID).Error; err != nil {
			return storeErr("swap positions", "task", a.ID, err)
		}
		if err := tx.First(&second, b.ID).Error; err != nil {
			return storeErr("swap positions", "task", b.ID, err)
		}
		posA, posB = second.Position, first.Position
		if err := tx.Model(&first).UpdateColumn("position", posA).Error; err != nil {
			return apperr.Store("swap positions", err)
		}
		if err := tx.Model(&second).UpdateColumn("position", posB).Error; err != nil {
			return apperr.Store("swap positions", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	a.Position, b.Position = posA, posB
	return nil
}

func normalize(task *model.Task) {
	task.ScheduledFor = utc(task.ScheduledFor)
	task.CompletedAt = utc(task.CompletedAt)
	task.LastRolloverDate = utc(task.LastRolloverDate)
}
