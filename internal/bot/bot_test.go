package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"day-planner/internal/calendar"
	"day-planner/internal/model"
	"day-planner/internal/recurrence"
	"day-planner/internal/repository"
	"day-planner/internal/service"
)

const ownerID int64 = 42

type fakeAPI struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
	acks []tgbotapi.CallbackConfig
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		f.acks = append(f.acks, cb)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) last() tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return tgbotapi.MessageConfig{}
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeAPI) texts() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var parts []string
	for _, m := range f.sent {
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "\n---\n")
}

type harness struct {
	db    *gorm.DB
	bot   *Bot
	api   *fakeAPI
	svc   Services
	cal   *calendar.Calendar
	clock time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "bot.db"), logger)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	cal, err := calendar.New(loc, 4)
	require.NoError(t, err)

	tasks := repository.NewTaskRepository(db, cal)
	templates := repository.NewTemplateRepository(db)
	taskSvc := service.NewTaskService(tasks, cal, logger)
	collector := service.NewRolloverCollector(tasks, templates, cal)
	people := service.NewPeopleService(repository.NewPersonRepository(db), cal, logger)
	svc := Services{
		Tasks:       taskSvc,
		Templates:   service.NewTemplateService(templates, cal, logger),
		Advancement: service.NewAdvancementService(collector, taskSvc, templates, cal, logger),
		Reminders:   service.NewReminderService(taskSvc, collector, people, cal),
		People:      people,
	}

	h := &harness{db: db, api: &fakeAPI{}, svc: svc, cal: cal}
	h.clock = time.Date(2026, 10, 17, 10, 0, 0, 0, loc)
	h.bot = newBot(h.api, ownerID, svc, cal, logger)
	h.bot.now = func() time.Time { return h.clock }
	return h
}

func message(from int64, text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: from, FirstName: "Ada"},
		Chat: &tgbotapi.Chat{ID: from, Type: "private"},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		cmd := strings.SplitN(text, " ", 2)[0]
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return msg
}

func (h *harness) say(t *testing.T, text string) {
	t.Helper()
	require.NoError(t, h.bot.handleMessage(context.Background(), message(ownerID, text)))
}

func (h *harness) press(t *testing.T, data string) {
	t.Helper()
	cb := &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: ownerID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: ownerID, Type: "private"}},
		Data:    data,
	}
	require.NoError(t, h.bot.handleCallback(context.Background(), cb))
}

func (h *harness) today(t *testing.T) []model.Task {
	t.Helper()
	_, tasks, err := h.svc.Tasks.TodayView(context.Background(), h.clock)
	require.NoError(t, err)
	return tasks
}

func TestStrangerIsTurnedAway(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.bot.handleMessage(ctx, message(7, "/start")))
	require.Len(t, h.api.sent, 1)
	assert.Equal(t, int64(7), h.api.last().ChatID)
	assert.Contains(t, h.api.last().Text, "private")

	cb := &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 7}},
		Data:    "bulk:archive",
	}
	require.NoError(t, h.bot.handleCallback(ctx, cb))
	require.Len(t, h.api.acks, 1)
	assert.Contains(t, h.api.acks[0].Text, "private")
}

func TestAddConversation(t *testing.T) {
	h := newHarness(t)

	h.say(t, "/add")
	h.say(t, "Buy   milk")
	h.say(t, "skip")
	h.say(t, btnToday)

	tasks := h.today(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy   milk", tasks[0].Title)
	assert.Empty(t, tasks[0].Description)
	assert.Contains(t, h.api.texts(), "Planned #1 Buy   milk for today")
	assert.False(t, h.bot.hasConversation(ownerID))
}

func TestAddConversationRejectsPastDateAndCancel(t *testing.T) {
	h := newHarness(t)

	h.say(t, "/add")
	h.say(t, "Call mom")
	h.say(t, "-")
	h.say(t, "someday")
	assert.True(t, h.bot.hasConversation(ownerID), "bad date keeps asking")
	h.say(t, btnCancel)
	assert.False(t, h.bot.hasConversation(ownerID))
	assert.Empty(t, h.today(t))

	h.say(t, "/add")
	h.say(t, "Call mom")
	h.say(t, "-")
	h.say(t, "2026-10-01")
	assert.Contains(t, h.api.last().Text, "in the past")
}

func TestTodayShowsRolloverFirst(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	task, err := h.svc.Tasks.CreateTask(ctx, h.clock, service.TaskInput{Title: "Write report", Placement: service.PlaceToday})
	require.NoError(t, err)
	h.clock = h.clock.Add(24 * time.Hour)

	h.say(t, "/today")
	last := h.api.last()
	assert.Contains(t, last.Text, "Rollover")
	assert.Contains(t, last.Text, "Write report")
	markup, ok := last.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.NotNil(t, markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, callbackData(scopeRollover, actionDone, task.ID), *markup.InlineKeyboard[0][0].CallbackData)

	h.press(t, callbackData(scopeRollover, actionToday, task.ID))
	assert.Equal(t, "📅 Moved to today", h.api.acks[len(h.api.acks)-1].Text)
	assert.Contains(t, h.api.texts(), "All caught up")

	moved := h.today(t)
	require.Len(t, moved, 1)
	assert.Equal(t, 1, moved[0].Rollovers)

	h.press(t, callbackData(scopeRollover, actionToday, task.ID))
	assert.Contains(t, h.api.last().Text, "not waiting in the rollover")
}

func TestDeferAsksForDate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	task, err := h.svc.Tasks.CreateTask(ctx, h.clock, service.TaskInput{Title: "Taxes", Placement: service.PlaceToday})
	require.NoError(t, err)
	h.clock = h.clock.Add(24 * time.Hour)

	h.press(t, callbackData(scopeRollover, actionDefer, task.ID))
	assert.True(t, h.bot.hasConversation(ownerID))
	h.say(t, "tomorrow")

	got, err := h.svc.Tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, h.cal.Key(h.clock).AddDays(1), h.cal.BucketOf(got.ScheduledFor))
	assert.Equal(t, 1, got.Rollovers)
	assert.Contains(t, h.api.texts(), "Deferred to tomorrow")
}

func TestBulkArchive(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		_, err := h.svc.Tasks.CreateTask(ctx, h.clock, service.TaskInput{Title: title, Placement: service.PlaceToday})
		require.NoError(t, err)
	}
	h.clock = h.clock.Add(48 * time.Hour)

	h.say(t, "/advance")
	markup, ok := h.api.last().ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	bulk := markup.InlineKeyboard[len(markup.InlineKeyboard)-1]
	assert.Equal(t, "bulk:archive", *bulk[0].CallbackData)

	h.press(t, "bulk:archive")
	assert.Equal(t, "🗄 Archived 3", h.api.acks[len(h.api.acks)-1].Text)
	pending, err := h.svc.Advancement.Pending(ctx, h.clock)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestTemplateConversationAndSkip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.say(t, "/newtemplate")
	h.say(t, "Water plants")
	h.say(t, "Weekly")
	h.say(t, "xyz")
	assert.Contains(t, h.api.last().Text, "unknown weekday")
	h.say(t, "mon 2")
	assert.Contains(t, h.api.last().Text, "anchor")
	h.say(t, "sat,wed")

	list, err := h.svc.Templates.List(ctx, h.clock)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Every Wednesday, Saturday", list[0].Description)

	h.say(t, "/today")
	assert.Contains(t, h.api.last().Text, "Recurring")
	h.press(t, callbackData(scopeTemplate, actionSkip, list[0].Template.ID))
	assert.Contains(t, h.api.texts(), "All caught up")
	assert.Empty(t, h.today(t))
}

func TestGenerateFromTemplate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.say(t, "/newtemplate")
	h.say(t, "Stretch")
	h.say(t, "daily")

	list, err := h.svc.Templates.List(ctx, h.clock)
	require.NoError(t, err)
	require.Len(t, list, 1)

	h.press(t, callbackData(scopeTemplate, actionGenerate, list[0].Template.ID))
	tasks := h.today(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Stretch", tasks[0].Title)
	assert.Contains(t, h.api.last().Text, "♻️")
}

func TestDayButtons(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a, err := h.svc.Tasks.CreateTask(ctx, h.clock, service.TaskInput{Title: "a", Placement: service.PlaceToday})
	require.NoError(t, err)
	_, err = h.svc.Tasks.CreateTask(ctx, h.clock, service.TaskInput{Title: "b", Placement: service.PlaceToday})
	require.NoError(t, err)

	h.press(t, callbackData(scopeDay, actionDown, a.ID))
	tasks := h.today(t)
	require.Len(t, tasks, 2)
	assert.Equal(t, "b", tasks[0].Title)

	h.press(t, callbackData(scopeDay, actionDone, a.ID))
	assert.Len(t, h.today(t), 1)
}

func TestScheduledSummariesReachOwnerWithoutStart(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.bot.SendMorningNudge(context.Background()))
	require.Len(t, h.api.sent, 1)
	assert.Equal(t, ownerID, h.api.last().ChatID)
	assert.Contains(t, h.api.last().Text, "Good morning")

	require.NoError(t, h.bot.SendDailyReports(context.Background()))
	require.Len(t, h.api.sent, 2)
	assert.Equal(t, ownerID, h.api.last().ChatID)
	assert.Contains(t, h.api.last().Text, "Daily summary")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, h.bot.SendDailyReports(ctx))
	assert.Len(t, h.api.sent, 2)
}

func TestTomorrowShowsTomorrowsBucket(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Tasks.CreateTask(context.Background(), h.clock, service.TaskInput{Title: "dentist", Placement: service.PlaceTomorrow})
	require.NoError(t, err)

	h.say(t, "/tomorrow")
	require.Len(t, h.api.sent, 1)
	assert.Contains(t, h.api.last().Text, "Tomorrow")
	assert.Contains(t, h.api.last().Text, "dentist")
}

func TestUnreadableTemplateCanBeDeleted(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tmpl, err := h.svc.Templates.Create(ctx, service.TemplateInput{Title: "Stretch", Pattern: recurrence.Daily{}})
	require.NoError(t, err)
	require.NoError(t, h.db.Model(&model.Template{}).Where("id = ?", tmpl.ID).
		UpdateColumn("rule", `{"kind":"hourly"}`).Error)

	h.say(t, "/today")
	assert.Contains(t, h.api.last().Text, "has an unusable pattern")

	h.say(t, "/templates")
	assert.Contains(t, h.api.last().Text, "Stretch")

	h.say(t, fmt.Sprintf("/deltemplate %d", tmpl.ID))
	assert.Contains(t, h.api.last().Text, "deleted")

	h.say(t, "/today")
	assert.NotContains(t, h.api.last().Text, "unusable")
}

func TestAddPersonConversation(t *testing.T) {
	h := newHarness(t)

	h.say(t, "/addperson")
	h.say(t, "Grace Hopper")
	h.say(t, "12-40")
	assert.Contains(t, h.api.last().Text, "December has no day 40")
	assert.True(t, h.bot.hasConversation(ownerID))
	h.say(t, "1906-12-09")
	h.say(t, "likes COBOL")
	assert.False(t, h.bot.hasConversation(ownerID))
	assert.Contains(t, h.api.last().Text, "Saved #1 Grace Hopper, December 9")

	h.say(t, "/people")
	text := h.api.last().Text
	assert.Contains(t, text, "<code>#1</code> Grace Hopper in 53 days")
	assert.Contains(t, text, "turns 120")
	assert.Contains(t, text, "likes COBOL")

	h.say(t, "/delperson 1")
	assert.Contains(t, h.api.last().Text, "Person #1 deleted")
	h.say(t, "/people")
	assert.Contains(t, h.api.last().Text, "No birthdays yet")
}

func TestTodayRaisesBirthdayUntilAcknowledged(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	person, err := h.svc.People.Create(ctx, h.clock, service.PersonInput{
		Name:     "Bob",
		Birthday: recurrence.Birthday{Month: time.October, Day: 17, Year: 1990},
		Notes:    "call after work",
	})
	require.NoError(t, err)

	h.say(t, "/today")
	require.Len(t, h.api.sent, 2)
	last := h.api.last()
	assert.Contains(t, last.Text, "Bob today, turns 36")
	assert.Contains(t, last.Text, "call after work")
	markup, ok := last.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, callbackData(scopePerson, actionAck, person.ID), *markup.InlineKeyboard[0][0].CallbackData)

	h.press(t, callbackData(scopePerson, actionAck, person.ID))
	assert.Contains(t, h.api.last().Text, "congratulate Bob")
	assert.Equal(t, "🎉 Noted", h.api.acks[len(h.api.acks)-1].Text)

	before := len(h.api.sent)
	h.say(t, "/today")
	assert.Len(t, h.api.sent, before+1)
	assert.NotContains(t, h.api.last().Text, "Bob")

	h.press(t, callbackData(scopePerson, actionAck, person.ID))
	assert.Contains(t, h.api.last().Text, "already acknowledged")
}

func TestCommandsValidateArguments(t *testing.T) {
	h := newHarness(t)

	h.say(t, "/done")
	assert.Contains(t, h.api.last().Text, "/done 12")
	h.say(t, "/done 99")
	assert.Contains(t, h.api.last().Text, "not found")
	h.say(t, "/day next week")
	assert.Contains(t, h.api.last().Text, "Usage")
	h.say(t, "/pause 1 2026-11-01")
	assert.Contains(t, h.api.last().Text, "not found")
	h.say(t, "/frobnicate")
	assert.Contains(t, h.api.last().Text, "Unknown command")
}
