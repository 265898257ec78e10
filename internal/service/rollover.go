package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"day-planner/internal/apperr"
	"day-planner/internal/calendar"
	"day-planner/internal/model"
)

// Rollover is the work that has to be resolved before today's view is shown.
type Rollover struct {
	Today        calendar.DayKey
	OverdueTasks []model.Task
	DueTemplates []model.Template
}

func (r Rollover) Empty() bool {
	return len(r.OverdueTasks) == 0 && len(r.DueTemplates) == 0
}

func (r Rollover) Len() int {
	return len(r.OverdueTasks) + len(r.DueTemplates)
}

// RolloverCollector rebuilds the rollover from the stores on every call; nothing is
// cached between user steps.
type RolloverCollector struct {
	tasks     TaskStore
	templates TemplateStore
	cal       *calendar.Calendar
}

func NewRolloverCollector(tasks TaskStore, templates TemplateStore, cal *calendar.Calendar) *RolloverCollector {
	return &RolloverCollector{tasks: tasks, templates: templates, cal: cal}
}

// Collect returns pending tasks scheduled before today's window, oldest first, and the
// active templates due today that were not yet fired or skipped for today.
func (c *RolloverCollector) Collect(ctx context.Context, now time.Time) (Rollover, error) {
	today := c.cal.Today(now)
	key := c.cal.Key(now)

	found, err := c.tasks.FindPendingOverdue(ctx, today.Start)
	if err != nil {
		return Rollover{}, fmt.Errorf("collect overdue tasks: %w", err)
	}
	overdue := found[:0]
	for _, t := range found {
		if t.IsPending() && t.ScheduledFor != nil && t.ScheduledFor.Before(today.Start) {
			overdue = append(overdue, t)
		}
	}
	sort.SliceStable(overdue, func(i, j int) bool {
		a, b := overdue[i], overdue[j]
		if !a.ScheduledFor.Equal(*b.ScheduledFor) {
			return a.ScheduledFor.Before(*b.ScheduledFor)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	active, err := c.templates.FindAllActive(ctx)
	if err != nil {
		return Rollover{}, fmt.Errorf("collect templates: %w", err)
	}
	var due []model.Template
	for _, tmpl := range active {
		if tmpl.ResolvedFor(key) {
			continue
		}
		ok, err := tmpl.Schedule().IsDue(key)
		if err != nil {
			if code := apperr.CodeOf(err); code != 0 {
				return Rollover{}, apperr.Wrap(code, fmt.Sprintf("template %d has an unusable pattern", tmpl.ID), err)
			}
			return Rollover{}, fmt.Errorf("evaluate template %d: %w", tmpl.ID, err)
		}
		if ok {
			due = append(due, tmpl)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].ID < due[j].ID })

	return Rollover{Today: key, OverdueTasks: overdue, DueTemplates: due}, nil
}
