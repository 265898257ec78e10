package service

import (
	"context"

	"day-planner/internal/apperr"
	"day-planner/internal/calendar"
	"day-planner/internal/model"
)

// Direction selects the neighbour SwapAdjacent exchanges with.
type Direction int

const (
	Up Direction = iota + 1
	Down
)

// Ordering keeps positions unique within a bucket: one logical day, or the scratch pad.
type Ordering struct {
	tasks TaskStore
	cal   *calendar.Calendar
}

func NewOrdering(tasks TaskStore, cal *calendar.Calendar) *Ordering {
	return &Ordering{tasks: tasks, cal: cal}
}

// NextPosition is one past the highest pending position in bucket, or 0 when empty.
// It always reads the store so bulk callers never reuse a stale value.
func (o *Ordering) NextPosition(ctx context.Context, bucket calendar.DayKey) (int, error) {
	max, ok, err := o.tasks.FindMaxPositionInBucket(ctx, bucket)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return max + 1, nil
}

// Bucket lists the pending tasks of a bucket in position order.
func (o *Ordering) Bucket(ctx context.Context, bucket calendar.DayKey) ([]model.Task, error) {
	if bucket.IsZero() {
		return o.tasks.FindPendingWithNoDate(ctx)
	}
	w := o.cal.WindowOf(bucket)
	return o.tasks.FindPendingByDateRange(ctx, w.Start, w.End)
}

// SwapAdjacent exchanges the task's position with its nearest pending neighbour in the
// given direction. It returns false when the task is already first (Up) or last (Down).
func (o *Ordering) SwapAdjacent(ctx context.Context, taskID uint, dir Direction) (*model.Task, bool, error) {
	if dir != Up && dir != Down {
		return nil, false, apperr.Validation("unknown direction %d", dir)
	}
	task, err := o.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, false, err
	}
	if !task.IsPending() {
		return nil, false, apperr.Validation("task %d is %s and cannot be reordered", task.ID, task.Status)
	}

	peers, err := o.Bucket(ctx, o.cal.BucketOf(task.ScheduledFor))
	if err != nil {
		return nil, false, err
	}

	var neighbor *model.Task
	for i := range peers {
		p := &peers[i]
		if p.ID == task.ID {
			continue
		}
		switch dir {
		case Up:
			if p.Position < task.Position && (neighbor == nil || p.Position > neighbor.Position) {
				neighbor = p
			}
		case Down:
			if p.Position > task.Position && (neighbor == nil || p.Position < neighbor.Position) {
				neighbor = p
			}
		}
	}
	if neighbor == nil {
		return task, false, nil
	}

	if err := o.tasks.SwapPositions(ctx, task, neighbor); err != nil {
		return nil, false, err
	}
	return task, true, nil
}
