package service

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"day-planner/internal/apperr"
	"day-planner/internal/calendar"
	"day-planner/internal/model"
)

// Placement says where a new or moved task goes.
type Placement int

const (
	PlaceToday Placement = iota
	PlaceTomorrow
	PlaceDate
	PlaceScratch
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string
	Description string
	URL         string
	Checklist   []string
	Placement   Placement
	// Day is read only for PlaceDate.
	Day calendar.DayKey
}

// TaskService wraps task-related business logic: creation, the status transitions and
// plain moves between days.
type TaskService struct {
	tasks  TaskStore
	cal    *calendar.Calendar
	order  *Ordering
	logger *slog.Logger
}

func NewTaskService(tasks TaskStore, cal *calendar.Calendar, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		tasks:  tasks,
		cal:    cal,
		order:  NewOrdering(tasks, cal),
		logger: logger,
	}
}

func (s *TaskService) Ordering() *Ordering {
	return s.order
}

func (s *TaskService) CreateTask(ctx context.Context, now time.Time, input TaskInput) (*model.Task, error) {
	title, err := cleanTitle(input.Title)
	if err != nil {
		return nil, err
	}
	link, err := cleanURL(input.URL)
	if err != nil {
		return nil, err
	}
	at, err := s.placementInstant(now, input.Placement, input.Day)
	if err != nil {
		return nil, err
	}

	var checklist []model.ChecklistItem
	for _, text := range input.Checklist {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		checklist = append(checklist, model.ChecklistItem{Text: text})
	}

	pos, err := s.order.NextPosition(ctx, s.cal.BucketOf(at))
	if err != nil {
		return nil, err
	}
	task := model.Task{
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		URL:          link,
		Checklist:    checklist,
		ScheduledFor: at,
		Status:       model.StatusPending,
		Position:     pos,
	}
	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, err
	}
	s.logger.Info("task created", "task_id", task.ID, "bucket", s.cal.BucketOf(at), "position", pos)
	return &task, nil
}

func (s *TaskService) GetTask(ctx context.Context, id uint) (*model.Task, error) {
	return s.tasks.FindByID(ctx, id)
}

// UpdateDetails replaces the title, description and url of a task.
func (s *TaskService) UpdateDetails(ctx context.Context, id uint, title, description, link string) (*model.Task, error) {
	clean, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	link, err = cleanURL(link)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Title = clean
	task.Description = strings.TrimSpace(description)
	task.URL = link
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// CompleteTask marks a pending task done.
func (s *TaskService) CompleteTask(ctx context.Context, id uint, now time.Time) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.complete(ctx, task, now); err != nil {
		return nil, err
	}
	return task, nil
}

// ArchiveTask shelves a pending task without completing it.
func (s *TaskService) ArchiveTask(ctx context.Context, id uint) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.archive(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// RestoreTask brings a completed or archived task back as pending on today.
func (s *TaskService) RestoreTask(ctx context.Context, id uint, now time.Time) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.IsPending() {
		return nil, apperr.Validation("task %d is already pending", task.ID)
	}
	at := s.cal.ScheduleInstant(s.cal.Key(now))
	pos, err := s.order.NextPosition(ctx, s.cal.BucketOf(&at))
	if err != nil {
		return nil, err
	}
	task.Status = model.StatusPending
	task.CompletedAt = nil
	task.ScheduledFor = &at
	task.Position = pos
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info("task restored", "task_id", task.ID)
	return task, nil
}

// MoveTask is the plain reschedule outside advancement; it never counts as a rollover.
func (s *TaskService) MoveTask(ctx context.Context, id uint, now time.Time, placement Placement, day calendar.DayKey) (*model.Task, error) {
	at, err := s.placementInstant(now, placement, day)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.place(ctx, task, at, false, now); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) MoveUp(ctx context.Context, id uint) (*model.Task, bool, error) {
	return s.order.SwapAdjacent(ctx, id, Up)
}

func (s *TaskService) MoveDown(ctx context.Context, id uint) (*model.Task, bool, error) {
	return s.order.SwapAdjacent(ctx, id, Down)
}

func (s *TaskService) AddChecklistItem(ctx context.Context, id uint, text string) (*model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("checklist item text is required")
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Checklist = append(task.Checklist, model.ChecklistItem{Text: text})
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ToggleChecklistItem flips item n, counted from 1 as shown to the user.
func (s *TaskService) ToggleChecklistItem(ctx context.Context, id uint, n int) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > len(task.Checklist) {
		return nil, apperr.Validation("task %d has no checklist item %d", task.ID, n)
	}
	task.Checklist[n-1].Done = !task.Checklist[n-1].Done
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DayView lists the pending tasks of one logical day in position order.
func (s *TaskService) DayView(ctx context.Context, day calendar.DayKey) ([]model.Task, error) {
	if !day.Valid() {
		return nil, apperr.Validation("invalid day %q", day)
	}
	return s.order.Bucket(ctx, day)
}

func (s *TaskService) TodayView(ctx context.Context, now time.Time) (calendar.DayKey, []model.Task, error) {
	day := s.cal.Key(now)
	tasks, err := s.DayView(ctx, day)
	return day, tasks, err
}

func (s *TaskService) TomorrowView(ctx context.Context, now time.Time) (calendar.DayKey, []model.Task, error) {
	day := s.cal.Key(now).AddDays(1)
	tasks, err := s.DayView(ctx, day)
	return day, tasks, err
}

func (s *TaskService) ScratchPad(ctx context.Context) ([]model.Task, error) {
	return s.order.Bucket(ctx, "")
}

// Recent lists completed or archived tasks, newest first, for restoring.
func (s *TaskService) Recent(ctx context.Context, status model.TaskStatus, limit int) ([]model.Task, error) {
	if status != model.StatusCompleted && status != model.StatusArchived {
		return nil, apperr.Validation("recent lists completed or archived tasks, not %q", status)
	}
	if limit <= 0 {
		limit = 20
	}
	return s.tasks.FindByStatus(ctx, status, limit)
}

func (s *TaskService) complete(ctx context.Context, task *model.Task, now time.Time) error {
	if !task.IsPending() {
		return apperr.Validation("task %d is already %s", task.ID, task.Status)
	}
	task.Status = model.StatusCompleted
	task.CompletedAt = &now
	if err := s.tasks.Save(ctx, task); err != nil {
		return err
	}
	s.logger.Info("task completed", "task_id", task.ID)
	return nil
}

func (s *TaskService) archive(ctx context.Context, task *model.Task) error {
	if !task.IsPending() {
		return apperr.Validation("task %d is already %s", task.ID, task.Status)
	}
	task.Status = model.StatusArchived
	task.CompletedAt = nil
	if err := s.tasks.Save(ctx, task); err != nil {
		return err
	}
	s.logger.Info("task archived", "task_id", task.ID)
	return nil
}

// place reschedules a pending task onto at (nil for the scratch pad). Entering another
// bucket takes the next free position there. rollover marks moves made while advancing.
func (s *TaskService) place(ctx context.Context, task *model.Task, at *time.Time, rollover bool, now time.Time) error {
	if !task.IsPending() {
		return apperr.Validation("task %d is %s and cannot be rescheduled", task.ID, task.Status)
	}
	from := s.cal.BucketOf(task.ScheduledFor)
	to := s.cal.BucketOf(at)
	if from != to {
		pos, err := s.order.NextPosition(ctx, to)
		if err != nil {
			return err
		}
		task.Position = pos
	}
	task.ScheduledFor = at
	if rollover {
		task.Rollovers++
		task.LastRolloverDate = &now
	}
	if err := s.tasks.Save(ctx, task); err != nil {
		return err
	}
	s.logger.Info("task rescheduled", "task_id", task.ID, "from", from, "to", to, "rollover", rollover)
	return nil
}

func (s *TaskService) placementInstant(now time.Time, placement Placement, day calendar.DayKey) (*time.Time, error) {
	today := s.cal.Key(now)
	var target calendar.DayKey
	switch placement {
	case PlaceToday:
		target = today
	case PlaceTomorrow:
		target = today.AddDays(1)
	case PlaceDate:
		if !day.Valid() {
			return nil, apperr.Validation("invalid date %q, expected YYYY-MM-DD", day)
		}
		if day.Before(today) {
			return nil, apperr.Validation("date %s is in the past", day)
		}
		target = day
	case PlaceScratch:
		return nil, nil
	default:
		return nil, apperr.Validation("unknown placement %d", placement)
	}
	at := s.cal.ScheduleInstant(target)
	return &at, nil
}

func cleanTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.Validation("title is required")
	}
	return title, nil
}

func cleanURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apperr.Validation("invalid url %q", raw)
	}
	return u.String(), nil
}
