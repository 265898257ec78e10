package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"day-planner/internal/apperr"
	"day-planner/internal/calendar"
	"day-planner/internal/service"
)

// telegramAPI is the part of tgbotapi.BotAPI the bot uses.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Services groups what the chat surface drives.
type Services struct {
	Tasks       *service.TaskService
	Templates   *service.TemplateService
	Advancement *service.AdvancementService
	Reminders   *service.ReminderService
	People      *service.PeopleService
}

// Bot aggregates Telegram API with services. Only the owner may talk to it.
type Bot struct {
	api           telegramAPI
	ownerID       int64
	svc           Services
	cal           *calendar.Calendar
	logger        *slog.Logger
	now           func() time.Time
	conversations map[int64]*conversationState
	mu            sync.Mutex
}

func New(token string, ownerID int64, svc Services, cal *calendar.Calendar, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	b := newBot(api, ownerID, svc, cal, logger)
	b.logger.Info("bot authorized", "account", api.Self.UserName)
	return b, nil
}

func newBot(api telegramAPI, ownerID int64, svc Services, cal *calendar.Calendar, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:           api,
		ownerID:       ownerID,
		svc:           svc,
		cal:           cal,
		logger:        logger.With("component", "bot"),
		now:           time.Now,
		conversations: make(map[int64]*conversationState),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}

	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			b.logger.Error("handle callback", "data", update.CallbackQuery.Data, "error", err)
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.logger.Error("handle message", "error", err)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	if msg.From.ID != b.ownerID {
		b.logger.Warn("message from stranger ignored", "user_id", msg.From.ID)
		return b.sendText(msg.Chat.ID, "🔒 This planner is private.")
	}

	if !msg.IsCommand() && isCancelInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		b.logger.Debug("command", "command", msg.Command(), "args", msg.CommandArguments())
		b.clearConversation(msg.From.ID)
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Try /add to plan a task or /help for the commands.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.sendText(chatID, helpText)
	case "today":
		return b.handleToday(ctx, chatID)
	case "tomorrow":
		return b.sendBucket(ctx, chatID, b.today().AddDays(1))
	case "day":
		day, err := parseDayInput(args, b.today())
		if err != nil {
			return b.sendText(chatID, "Usage: /day YYYY-MM-DD")
		}
		return b.sendBucket(ctx, chatID, day)
	case "scratch":
		return b.sendBucket(ctx, chatID, "")
	case "add":
		return b.startTaskConversation(msg)
	case "done":
		return b.withID(chatID, args, "/done 12", func(id uint) error { return b.completeTask(ctx, chatID, id) })
	case "archive":
		return b.withID(chatID, args, "/archive 12", func(id uint) error { return b.archiveTask(ctx, chatID, id) })
	case "restore":
		return b.withID(chatID, args, "/restore 12", func(id uint) error { return b.restoreTask(ctx, chatID, id) })
	case "history":
		return b.handleHistory(ctx, chatID)
	case "up":
		return b.withID(chatID, args, "/up 12", func(id uint) error { return b.reorder(ctx, chatID, id, service.Up) })
	case "down":
		return b.withID(chatID, args, "/down 12", func(id uint) error { return b.reorder(ctx, chatID, id, service.Down) })
	case "move":
		return b.handleMove(ctx, chatID, args)
	case "check":
		return b.handleCheck(ctx, chatID, args)
	case "item":
		return b.handleItem(ctx, chatID, args)
	case "advance":
		return b.presentNext(ctx, chatID)
	case "templates":
		return b.handleTemplates(ctx, chatID)
	case "newtemplate":
		return b.startTemplateConversation(msg)
	case "pause":
		return b.handlePause(ctx, chatID, args)
	case "resume":
		return b.withID(chatID, args, "/resume 3", func(id uint) error { return b.resumeTemplate(ctx, chatID, id) })
	case "deltemplate":
		return b.withID(chatID, args, "/deltemplate 3", func(id uint) error { return b.deleteTemplate(ctx, chatID, id) })
	case "people":
		return b.handlePeople(ctx, chatID)
	case "addperson":
		return b.startPersonConversation(msg)
	case "delperson":
		return b.withID(chatID, args, "/delperson 2", func(id uint) error { return b.deletePerson(ctx, chatID, id) })
	case "report":
		return b.handleReport(ctx, chatID)
	case "cancel":
		return b.sendText(chatID, "⏪ Cancelled.")
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

const helpText = "ℹ️ <b>Commands</b>\n" +
	"• /today, /tomorrow, /day YYYY-MM-DD, /scratch — views\n" +
	"• /add — plan a task step by step\n" +
	"• /done, /archive, /restore &lt;id&gt; — change a task's status\n" +
	"• /move &lt;id&gt; today|tomorrow|scratch|YYYY-MM-DD — reschedule\n" +
	"• /up, /down &lt;id&gt; — reorder within the day\n" +
	"• /item &lt;id&gt; &lt;text&gt;, /check &lt;id&gt; &lt;n&gt; — checklist\n" +
	"• /history — recently finished tasks\n" +
	"• /advance — resolve rollover tasks and recurring prompts\n" +
	"• /templates, /newtemplate — recurring templates\n" +
	"• /pause &lt;id&gt; YYYY-MM-DD, /resume &lt;id&gt;, /deltemplate &lt;id&gt;\n" +
	"• /people, /addperson, /delperson &lt;id&gt; — birthdays\n" +
	"• /report — today's summary\n" +
	"• /cancel — stop the current input"

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Hi, %s!\n<b>I keep your days in order.</b>\n\n%s", escape(name), helpText)
	return b.sendText(msg.Chat.ID, text)
}

// handleToday shows the advancement step while the rollover is pending, the day view otherwise.
func (b *Bot) handleToday(ctx context.Context, chatID int64) error {
	step, err := b.svc.Advancement.Next(ctx, b.now())
	if err != nil {
		return b.replyError(chatID, err)
	}
	if step != nil {
		return b.sendStep(chatID, step)
	}
	return b.sendTodayView(ctx, chatID)
}

func (b *Bot) handleReport(ctx context.Context, chatID int64) error {
	text, err := b.svc.Reminders.DailySummary(ctx, b.now())
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, text)
}

// SendDailyReports sends today's summary to the owner.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	return b.notifyOwner(ctx, b.svc.Reminders.DailySummary)
}

// SendMorningNudge sends the start-of-day summary to the owner.
func (b *Bot) SendMorningNudge(ctx context.Context) error {
	return b.notifyOwner(ctx, b.svc.Reminders.MorningNudge)
}

// notifyOwner writes to the owner's private chat, whose id equals the owner's user id,
// so scheduled messages do not depend on an earlier /start.
func (b *Bot) notifyOwner(ctx context.Context, build func(context.Context, time.Time) (string, error)) error {
	text, err := build(ctx, b.now())
	if err != nil {
		return fmt.Errorf("build summary: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.sendText(b.ownerID, text); err != nil {
		return fmt.Errorf("send summary to owner: %w", err)
	}
	return nil
}

func (b *Bot) withID(chatID int64, args, example string, fn func(uint) error) error {
	id, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Give the id, e.g. %s", example))
	}
	return fn(id)
}

func (b *Bot) today() calendar.DayKey {
	return b.cal.Key(b.now())
}

// replyError tells the user what went wrong. Store failures are logged, not shown.
func (b *Bot) replyError(chatID int64, err error) error {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return b.sendText(chatID, "🔍 "+escape(errorMessage(err)))
	case errors.Is(err, apperr.ErrAmbiguousSchedule):
		return b.sendText(chatID, "❓ "+escape(errorMessage(err))+". Add the first date, e.g. <code>mon,thu 2 2026-10-12</code>.")
	case errors.Is(err, apperr.ErrValidation):
		return b.sendText(chatID, "⚠️ "+escape(errorMessage(err)))
	default:
		b.logger.Error("request failed", "error", err)
		return b.sendText(chatID, "💥 Something went wrong. Try again later.")
	}
}

// errorMessage drops internal wrapping but keeps a nested planner error's own message.
func errorMessage(err error) string {
	var e *apperr.Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	var inner *apperr.Error
	if e.Cause != nil && errors.As(e.Cause, &inner) {
		return e.Message + ": " + inner.Message
	}
	return e.Message
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) ack(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		b.logger.Warn("callback ack", "error", err)
	}
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}
