package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"day-planner/internal/apperr"
	"day-planner/internal/calendar"
	"day-planner/internal/model"
)

var errDiskFull = errors.New("disk full")

type memoryTasks struct {
	mu    sync.Mutex
	cal   *calendar.Calendar
	next  uint
	items map[uint]model.Task
	clock time.Time
	// failSave makes Save fail for the listed ids.
	failSave map[uint]bool
	failSwap bool
}

func newMemoryTasks(cal *calendar.Calendar) *memoryTasks {
	return &memoryTasks{
		cal:      cal,
		items:    make(map[uint]model.Task),
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		failSave: make(map[uint]bool),
	}
}

func cloneTask(t model.Task) model.Task {
	cp := t
	if t.ScheduledFor != nil {
		v := *t.ScheduledFor
		cp.ScheduledFor = &v
	}
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		cp.CompletedAt = &v
	}
	if t.LastRolloverDate != nil {
		v := *t.LastRolloverDate
		cp.LastRolloverDate = &v
	}
	if t.GeneratedFrom != nil {
		v := *t.GeneratedFrom
		cp.GeneratedFrom = &v
	}
	if t.Checklist != nil {
		cp.Checklist = append([]model.ChecklistItem(nil), t.Checklist...)
	}
	return cp
}

func (m *memoryTasks) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memoryTasks) filter(keep func(model.Task) bool) []model.Task {
	var out []model.Task
	for _, t := range m.items {
		if keep(t) {
			out = append(out, cloneTask(t))
		}
	}
	return out
}

func byPosition(tasks []model.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Position != tasks[j].Position {
			return tasks[i].Position < tasks[j].Position
		}
		return tasks[i].ID < tasks[j].ID
	})
}

func (m *memoryTasks) FindPendingByDateRange(_ context.Context, start, end time.Time) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.filter(func(t model.Task) bool {
		return t.IsPending() && t.ScheduledFor != nil && !t.ScheduledFor.Before(start) && t.ScheduledFor.Before(end)
	})
	byPosition(out)
	return out, nil
}

func (m *memoryTasks) FindPendingWithNoDate(_ context.Context) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.filter(func(t model.Task) bool { return t.IsPending() && t.ScheduledFor == nil })
	byPosition(out)
	return out, nil
}

func (m *memoryTasks) FindPendingOverdue(_ context.Context, before time.Time) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.filter(func(t model.Task) bool {
		return t.IsPending() && t.ScheduledFor != nil && t.ScheduledFor.Before(before)
	})
	// Deliberately unordered: the collector owns the final order.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memoryTasks) FindByStatus(_ context.Context, status model.TaskStatus, limit int) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.filter(func(t model.Task) bool { return t.Status == status })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryTasks) FindByID(_ context.Context, id uint) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("task", id)
	}
	cp := cloneTask(t)
	return &cp, nil
}

func (m *memoryTasks) Create(_ context.Context, task *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	task.ID = m.next
	now := m.tick()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	m.items[task.ID] = cloneTask(*task)
	return nil
}

func (m *memoryTasks) Save(_ context.Context, task *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave[task.ID] {
		return apperr.Store("save task", errDiskFull)
	}
	if _, ok := m.items[task.ID]; !ok {
		return apperr.NotFound("task", task.ID)
	}
	task.UpdatedAt = m.tick()
	m.items[task.ID] = cloneTask(*task)
	return nil
}

func (m *memoryTasks) FindMaxPositionInBucket(_ context.Context, bucket calendar.DayKey) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max, found := 0, false
	for _, t := range m.items {
		if !t.IsPending() || m.cal.BucketOf(t.ScheduledFor) != bucket {
			continue
		}
		if !found || t.Position > max {
			max, found = t.Position, true
		}
	}
	return max, found, nil
}

func (m *memoryTasks) SwapPositions(_ context.Context, a, b *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSwap {
		return apperr.Store("swap positions", errDiskFull)
	}
	ra, okA := m.items[a.ID]
	rb, okB := m.items[b.ID]
	if !okA || !okB {
		return apperr.NotFound("task", a.ID)
	}
	ra.Position, rb.Position = rb.Position, ra.Position
	m.items[a.ID], m.items[b.ID] = ra, rb
	a.Position, b.Position = ra.Position, rb.Position
	return nil
}

// pending returns every pending task, for invariant checks.
func (m *memoryTasks) pending() []model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(t model.Task) bool { return t.IsPending() })
}

type memoryTemplates struct {
	mu       sync.Mutex
	next     uint
	items    map[uint]model.Template
	failSave bool
}

func newMemoryTemplates() *memoryTemplates {
	return &memoryTemplates{items: make(map[uint]model.Template)}
}

func (m *memoryTemplates) sorted(keep func(model.Template) bool) []model.Template {
	var out []model.Template
	for _, t := range m.items {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memoryTemplates) FindAllActive(_ context.Context) ([]model.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(t model.Template) bool { return t.IsActive }), nil
}

func (m *memoryTemplates) FindAll(_ context.Context) ([]model.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(model.Template) bool { return true }), nil
}

func (m *memoryTemplates) FindByID(_ context.Context, id uint) (*model.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("template", id)
	}
	return &t, nil
}

func (m *memoryTemplates) Create(_ context.Context, tmpl *model.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	tmpl.ID = m.next
	m.items[tmpl.ID] = *tmpl
	return nil
}

func (m *memoryTemplates) Save(_ context.Context, tmpl *model.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return apperr.Store("save template", errDiskFull)
	}
	if _, ok := m.items[tmpl.ID]; !ok {
		return apperr.NotFound("template", tmpl.ID)
	}
	m.items[tmpl.ID] = *tmpl
	return nil
}

func (m *memoryTemplates) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

type memoryPeople struct {
	mu    sync.Mutex
	next  uint
	items map[uint]model.Person
}

func newMemoryPeople() *memoryPeople {
	return &memoryPeople{items: make(map[uint]model.Person)}
}

func (m *memoryPeople) FindAll(_ context.Context) ([]model.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Person, 0, len(m.items))
	for _, p := range m.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BirthMonth != out[j].BirthMonth {
			return out[i].BirthMonth < out[j].BirthMonth
		}
		if out[i].BirthDay != out[j].BirthDay {
			return out[i].BirthDay < out[j].BirthDay
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memoryPeople) FindByID(_ context.Context, id uint) (*model.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("person", id)
	}
	return &p, nil
}

func (m *memoryPeople) Create(_ context.Context, person *model.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	person.ID = m.next
	m.items[person.ID] = *person
	return nil
}

func (m *memoryPeople) Save(_ context.Context, person *model.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[person.ID]; !ok {
		return apperr.NotFound("person", person.ID)
	}
	m.items[person.ID] = *person
	return nil
}

func (m *memoryPeople) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// planner wires the services against memory stores the way main does against gorm.
type planner struct {
	cal        *calendar.Calendar
	tasks      *memoryTasks
	templates  *memoryTemplates
	people     *memoryPeople
	taskSvc    *TaskService
	tmplSvc    *TemplateService
	collector  *RolloverCollector
	advance    *AdvancementService
	peopleSvc  *PeopleService
	reminders  *ReminderService
	now        time.Time
	yesterdayK calendar.DayKey
}

func newPlanner(t *testing.T) *planner {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	cal, err := calendar.New(loc, 4)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tasks := newMemoryTasks(cal)
	templates := newMemoryTemplates()
	taskSvc := NewTaskService(tasks, cal, logger)
	collector := NewRolloverCollector(tasks, templates, cal)
	people := newMemoryPeople()
	peopleSvc := NewPeopleService(people, cal, logger)
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, loc)
	return &planner{
		cal:        cal,
		tasks:      tasks,
		templates:  templates,
		people:     people,
		taskSvc:    taskSvc,
		tmplSvc:    NewTemplateService(templates, cal, logger),
		collector:  collector,
		advance:    NewAdvancementService(collector, taskSvc, templates, cal, logger),
		peopleSvc:  peopleSvc,
		reminders:  NewReminderService(taskSvc, collector, peopleSvc, cal),
		now:        now,
		yesterdayK: cal.Key(now).AddDays(-1),
	}
}

func (p *planner) today() calendar.DayKey {
	return p.cal.Key(p.now)
}

// seedTask stores a pending task directly, bypassing placement validation, so tests can
// put tasks on past days.
func (p *planner) seedTask(t *testing.T, title string, day calendar.DayKey, position int) *model.Task {
	t.Helper()
	task := model.Task{Title: title, Status: model.StatusPending, Position: position}
	if !day.IsZero() {
		at := p.cal.ScheduleInstant(day)
		task.ScheduledFor = &at
	}
	require.NoError(t, p.tasks.Create(context.Background(), &task))
	return &task
}

func (p *planner) seedTemplate(t *testing.T, tmpl model.Template) *model.Template {
	t.Helper()
	tmpl.IsActive = true
	require.NoError(t, p.templates.Create(context.Background(), &tmpl))
	return &tmpl
}

func (p *planner) reload(t *testing.T, id uint) *model.Task {
	t.Helper()
	task, err := p.tasks.FindByID(context.Background(), id)
	require.NoError(t, err)
	return task
}
