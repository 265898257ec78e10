package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"day-planner/internal/apperr"
	"day-planner/internal/calendar"
	"day-planner/internal/model"
)

// Item is one entry of the advancement queue: exactly one of Task or Template is set.
type Item struct {
	Task     *model.Task
	Template *model.Template
}

func (i Item) IsTask() bool {
	return i.Task != nil
}

// Step is what the user resolves next.
type Step struct {
	Item Item
	// Remaining counts queued items including this one.
	Remaining int
	// Overdue counts the overdue tasks the bulk shortcuts would touch.
	Overdue int
	Today   calendar.DayKey
}

// AdvancementService walks the user through the rollover one resolution at a time.
// It keeps no state of its own: every call re-collects from the stores, so a restart
// between two steps loses nothing.
type AdvancementService struct {
	collector *RolloverCollector
	tasks     *TaskService
	templates TemplateStore
	cal       *calendar.Calendar
	logger    *slog.Logger
}

func NewAdvancementService(collector *RolloverCollector, tasks *TaskService, templates TemplateStore, cal *calendar.Calendar, logger *slog.Logger) *AdvancementService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdvancementService{
		collector: collector,
		tasks:     tasks,
		templates: templates,
		cal:       cal,
		logger:    logger,
	}
}

// Queue returns overdue tasks followed by due templates.
func (a *AdvancementService) Queue(ctx context.Context, now time.Time) ([]Item, error) {
	r, err := a.collector.Collect(ctx, now)
	if err != nil {
		return nil, err
	}
	return queueOf(r), nil
}

func queueOf(r Rollover) []Item {
	items := make([]Item, 0, r.Len())
	for i := range r.OverdueTasks {
		items = append(items, Item{Task: &r.OverdueTasks[i]})
	}
	for i := range r.DueTemplates {
		items = append(items, Item{Template: &r.DueTemplates[i]})
	}
	return items
}

// Next returns the head of the queue, or nil once there is nothing left to resolve.
func (a *AdvancementService) Next(ctx context.Context, now time.Time) (*Step, error) {
	r, err := a.collector.Collect(ctx, now)
	if err != nil {
		return nil, err
	}
	if r.Empty() {
		return nil, nil
	}
	items := queueOf(r)
	return &Step{
		Item:      items[0],
		Remaining: len(items),
		Overdue:   len(r.OverdueTasks),
		Today:     r.Today,
	}, nil
}

// Pending reports whether advancement must run before the normal day view.
func (a *AdvancementService) Pending(ctx context.Context, now time.Time) (bool, error) {
	r, err := a.collector.Collect(ctx, now)
	if err != nil {
		return false, err
	}
	return !r.Empty(), nil
}

// Complete resolves an overdue task by finishing it.
func (a *AdvancementService) Complete(ctx context.Context, now time.Time, taskID uint) (*model.Task, error) {
	task, err := a.overdueTask(ctx, now, taskID)
	if err != nil {
		return nil, err
	}
	if err := a.tasks.complete(ctx, task, now); err != nil {
		return nil, err
	}
	a.resolved("complete", "task_id", task.ID)
	return task, nil
}

// MoveToToday reschedules an overdue task to the middle of today's window.
func (a *AdvancementService) MoveToToday(ctx context.Context, now time.Time, taskID uint) (*model.Task, error) {
	task, err := a.overdueTask(ctx, now, taskID)
	if err != nil {
		return nil, err
	}
	if err := a.moveToToday(ctx, task, now); err != nil {
		return nil, err
	}
	a.resolved("move-to-today", "task_id", task.ID)
	return task, nil
}

// Defer reschedules an overdue task onto day, which must not be in the past.
func (a *AdvancementService) Defer(ctx context.Context, now time.Time, taskID uint, day calendar.DayKey) (*model.Task, error) {
	at, err := a.targetInstant(now, day)
	if err != nil {
		return nil, err
	}
	task, err := a.overdueTask(ctx, now, taskID)
	if err != nil {
		return nil, err
	}
	if err := a.tasks.place(ctx, task, &at, true, now); err != nil {
		return nil, err
	}
	a.resolved("defer", "task_id", task.ID, "day", day)
	return task, nil
}

// MoveToScratch takes the date off an overdue task. It is not counted as a rollover.
func (a *AdvancementService) MoveToScratch(ctx context.Context, now time.Time, taskID uint) (*model.Task, error) {
	task, err := a.overdueTask(ctx, now, taskID)
	if err != nil {
		return nil, err
	}
	if err := a.tasks.place(ctx, task, nil, false, now); err != nil {
		return nil, err
	}
	a.resolved("move-to-scratch", "task_id", task.ID)
	return task, nil
}

func (a *AdvancementService) Archive(ctx context.Context, now time.Time, taskID uint) (*model.Task, error) {
	task, err := a.overdueTask(ctx, now, taskID)
	if err != nil {
		return nil, err
	}
	if err := a.tasks.archive(ctx, task); err != nil {
		return nil, err
	}
	a.resolved("archive", "task_id", task.ID)
	return task, nil
}

// GenerateToday creates today's task from a due template and marks it resolved.
func (a *AdvancementService) GenerateToday(ctx context.Context, now time.Time, templateID uint) (*model.Task, error) {
	return a.generate(ctx, now, templateID, a.cal.Key(now))
}

// GenerateOnDate creates the template's task on day instead of today. The template is
// still resolved for today.
func (a *AdvancementService) GenerateOnDate(ctx context.Context, now time.Time, templateID uint, day calendar.DayKey) (*model.Task, error) {
	return a.generate(ctx, now, templateID, day)
}

// Skip resolves a due template for today without creating a task.
func (a *AdvancementService) Skip(ctx context.Context, now time.Time, templateID uint) (*model.Template, error) {
	today := a.cal.Key(now)
	tmpl, err := a.dueTemplate(ctx, today, templateID)
	if err != nil {
		return nil, err
	}
	tmpl.LastGeneratedFor = today
	if err := a.templates.Save(ctx, tmpl); err != nil {
		return nil, err
	}
	a.resolved("skip", "template_id", tmpl.ID)
	return tmpl, nil
}

// ArchiveAll declares bankruptcy: every task overdue right now is archived. Tasks
// archived before a failure stay archived; the error reports how far it got.
func (a *AdvancementService) ArchiveAll(ctx context.Context, now time.Time) (int, error) {
	r, err := a.collector.Collect(ctx, now)
	if err != nil {
		return 0, err
	}
	done := 0
	for i := range r.OverdueTasks {
		task := &r.OverdueTasks[i]
		if err := a.tasks.archive(ctx, task); err != nil {
			return done, fmt.Errorf("archive task %d (%d of %d done): %w", task.ID, done, len(r.OverdueTasks), err)
		}
		done++
	}
	a.resolved("archive-all", "count", done)
	return done, nil
}

// RescheduleAllToToday moves every overdue task to the middle of today. Positions are
// re-read from the store for each task, so a partial run never leaves duplicates.
func (a *AdvancementService) RescheduleAllToToday(ctx context.Context, now time.Time) (int, error) {
	r, err := a.collector.Collect(ctx, now)
	if err != nil {
		return 0, err
	}
	done := 0
	for i := range r.OverdueTasks {
		task := &r.OverdueTasks[i]
		if err := a.moveToToday(ctx, task, now); err != nil {
			return done, fmt.Errorf("reschedule task %d (%d of %d done): %w", task.ID, done, len(r.OverdueTasks), err)
		}
		done++
	}
	a.resolved("reschedule-all-to-today", "count", done)
	return done, nil
}

func (a *AdvancementService) moveToToday(ctx context.Context, task *model.Task, now time.Time) error {
	at := a.cal.Today(now).Midpoint()
	return a.tasks.place(ctx, task, &at, true, now)
}

func (a *AdvancementService) generate(ctx context.Context, now time.Time, templateID uint, day calendar.DayKey) (*model.Task, error) {
	at, err := a.targetInstant(now, day)
	if err != nil {
		return nil, err
	}
	today := a.cal.Key(now)
	tmpl, err := a.dueTemplate(ctx, today, templateID)
	if err != nil {
		return nil, err
	}

	pos, err := a.tasks.order.NextPosition(ctx, a.cal.BucketOf(&at))
	if err != nil {
		return nil, err
	}
	id := tmpl.ID
	task := model.Task{
		Title:         tmpl.Title,
		Description:   tmpl.Description,
		URL:           tmpl.URL,
		ScheduledFor:  &at,
		Status:        model.StatusPending,
		Position:      pos,
		GeneratedFrom: &id,
	}
	if err := a.tasks.tasks.Create(ctx, &task); err != nil {
		return nil, err
	}

	tmpl.LastGeneratedFor = today
	if err := a.templates.Save(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("mark template %d generated: %w", tmpl.ID, err)
	}
	a.resolved("generate", "template_id", tmpl.ID, "task_id", task.ID, "day", day)
	return &task, nil
}

// overdueTask loads a task and checks it is still waiting in the rollover. Stale
// resolutions (a button pressed twice) fail instead of counting a second rollover.
func (a *AdvancementService) overdueTask(ctx context.Context, now time.Time, id uint) (*model.Task, error) {
	task, err := a.tasks.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	start := a.cal.Today(now).Start
	if !task.IsPending() || task.ScheduledFor == nil || !task.ScheduledFor.Before(start) {
		return nil, apperr.Validation("task %d is not waiting in the rollover", task.ID)
	}
	return task, nil
}

// dueTemplate loads a template and checks it still needs a decision for today.
func (a *AdvancementService) dueTemplate(ctx context.Context, today calendar.DayKey, id uint) (*model.Template, error) {
	tmpl, err := a.templates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tmpl.ResolvedFor(today) {
		return nil, apperr.Validation("template %d was already resolved for %s", tmpl.ID, today)
	}
	due, err := tmpl.Schedule().IsDue(today)
	if err != nil {
		return nil, err
	}
	if !due {
		return nil, apperr.Validation("template %d is not due on %s", tmpl.ID, today)
	}
	return tmpl, nil
}

func (a *AdvancementService) targetInstant(now time.Time, day calendar.DayKey) (time.Time, error) {
	if !day.Valid() {
		return time.Time{}, apperr.Validation("invalid date %q, expected YYYY-MM-DD", day)
	}
	if day.Before(a.cal.Key(now)) {
		return time.Time{}, apperr.Validation("date %s is in the past", day)
	}
	return a.cal.ScheduleInstant(day), nil
}

func (a *AdvancementService) resolved(action string, args ...any) {
	a.logger.Info("rollover resolved", append([]any{"action", action}, args...)...)
}
