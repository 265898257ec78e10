package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"day-planner/internal/calendar"
	"day-planner/internal/model"
	"day-planner/internal/service"
)

const historyLimit = 10

func (b *Bot) startTaskConversation(msg *tgbotapi.Message) error {
	b.setConversation(msg.From.ID, &conversationState{stage: stageTaskTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New task.\n<b>Step 1:</b> what is it called?", cancelKeyboard())
}

func (b *Bot) finishTaskCreation(ctx context.Context, chatID int64, input service.TaskInput) error {
	task, err := b.svc.Tasks.CreateTask(ctx, b.now(), input)
	if err != nil {
		return b.replyError(chatID, err)
	}
	text := fmt.Sprintf("✅ Planned #%d %s for %s.", task.ID, escape(task.Title), b.bucketLabel(b.cal.BucketOf(task.ScheduledFor)))
	if err := b.sendText(chatID, text); err != nil {
		return err
	}
	return b.sendBucket(ctx, chatID, b.cal.BucketOf(task.ScheduledFor))
}

// sendBucket renders one day, or the scratch pad for the zero key, with task buttons.
func (b *Bot) sendBucket(ctx context.Context, chatID int64, day calendar.DayKey) error {
	var (
		tasks []model.Task
		err   error
	)
	if day.IsZero() {
		tasks, err = b.svc.Tasks.ScratchPad(ctx)
	} else {
		tasks, err = b.svc.Tasks.DayView(ctx, day)
	}
	if err != nil {
		return b.replyError(chatID, err)
	}
	text := formatBucket(b.bucketTitle(day), tasks)
	if len(tasks) == 0 {
		return b.sendText(chatID, text)
	}
	return b.sendWithReplyMarkup(chatID, text, taskListKeyboard(tasks))
}

func (b *Bot) bucketTitle(day calendar.DayKey) string {
	today := b.today()
	switch {
	case day.IsZero():
		return "📝 <b>Scratch pad</b>"
	case day == today:
		return fmt.Sprintf("🔥 <b>Today</b> · %s", formatDay(day))
	case day == today.AddDays(1):
		return fmt.Sprintf("🌅 <b>Tomorrow</b> · %s", formatDay(day))
	default:
		return fmt.Sprintf("🗓 <b>%s</b>", formatDay(day))
	}
}

func (b *Bot) bucketLabel(day calendar.DayKey) string {
	today := b.today()
	switch {
	case day.IsZero():
		return "the scratch pad"
	case day == today:
		return "today"
	case day == today.AddDays(1):
		return "tomorrow"
	default:
		return formatDay(day)
	}
}

func (b *Bot) completeTask(ctx context.Context, chatID int64, id uint) error {
	task, err := b.svc.Tasks.CompleteTask(ctx, id, b.now())
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("✅ %s done.", escape(task.Title)))
}

func (b *Bot) archiveTask(ctx context.Context, chatID int64, id uint) error {
	task, err := b.svc.Tasks.ArchiveTask(ctx, id)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("🗄 %s archived. /restore %d brings it back.", escape(task.Title), task.ID))
}

func (b *Bot) restoreTask(ctx context.Context, chatID int64, id uint) error {
	task, err := b.svc.Tasks.RestoreTask(ctx, id, b.now())
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("↩️ %s is back on today.", escape(task.Title)))
}

func (b *Bot) reorder(ctx context.Context, chatID int64, id uint, dir service.Direction) error {
	var (
		task  *model.Task
		moved bool
		err   error
	)
	if dir == service.Up {
		task, moved, err = b.svc.Tasks.MoveUp(ctx, id)
	} else {
		task, moved, err = b.svc.Tasks.MoveDown(ctx, id)
	}
	if err != nil {
		return b.replyError(chatID, err)
	}
	if !moved {
		return b.sendText(chatID, "Already at the edge.")
	}
	return b.sendBucket(ctx, chatID, b.cal.BucketOf(task.ScheduledFor))
}

func (b *Bot) handleMove(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return b.sendText(chatID, "Usage: /move 12 today|tomorrow|scratch|YYYY-MM-DD")
	}
	id, err := parseID(fields[0])
	if err != nil {
		return b.sendText(chatID, "Usage: /move 12 today|tomorrow|scratch|YYYY-MM-DD")
	}
	placement, day, err := parseWhen(fields[1])
	if err != nil {
		return b.replyError(chatID, err)
	}
	task, err := b.svc.Tasks.MoveTask(ctx, id, b.now(), placement, day)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("📦 %s moved to %s.", escape(task.Title), b.bucketLabel(b.cal.BucketOf(task.ScheduledFor))))
}

func (b *Bot) handleCheck(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return b.sendText(chatID, "Usage: /check 12 2")
	}
	id, err := parseID(fields[0])
	if err != nil {
		return b.sendText(chatID, "Usage: /check 12 2")
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return b.sendText(chatID, "Usage: /check 12 2")
	}
	task, err := b.svc.Tasks.ToggleChecklistItem(ctx, id, n)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, formatTaskDetail(*task))
}

func (b *Bot) handleItem(ctx context.Context, chatID int64, args string) error {
	rawID, text, ok := strings.Cut(args, " ")
	id, err := parseID(rawID)
	if !ok || err != nil {
		return b.sendText(chatID, "Usage: /item 12 buy stamps")
	}
	task, err := b.svc.Tasks.AddChecklistItem(ctx, id, text)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, formatTaskDetail(*task))
}

func (b *Bot) handleHistory(ctx context.Context, chatID int64) error {
	completed, err := b.svc.Tasks.Recent(ctx, model.StatusCompleted, historyLimit)
	if err != nil {
		return b.replyError(chatID, err)
	}
	archived, err := b.svc.Tasks.Recent(ctx, model.StatusArchived, historyLimit)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, formatHistory(completed, archived))
}

// handleMenuAlias maps reply keyboard buttons onto commands.
func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	if b.hasConversation(msg.From.ID) {
		return false, nil
	}
	chatID := msg.Chat.ID
	switch strings.TrimSpace(msg.Text) {
	case menuLabelToday:
		return true, b.handleToday(ctx, chatID)
	case menuLabelTomorrow:
		day := b.today().AddDays(1)
		return true, b.sendBucket(ctx, chatID, day)
	case menuLabelScratch:
		return true, b.sendBucket(ctx, chatID, "")
	case menuLabelAdd:
		return true, b.startTaskConversation(msg)
	case menuLabelAdvance:
		return true, b.presentNext(ctx, chatID)
	case menuLabelHelp:
		return true, b.sendText(chatID, helpText)
	default:
		return false, nil
	}
}
