package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"day-planner/internal/calendar"
	"day-planner/internal/service"
)

// presentNext shows the head of the rollover, or today's plan once it is clear.
func (b *Bot) presentNext(ctx context.Context, chatID int64) error {
	step, err := b.svc.Advancement.Next(ctx, b.now())
	if err != nil {
		return b.replyError(chatID, err)
	}
	if step == nil {
		if err := b.sendText(chatID, "✨ All caught up."); err != nil {
			return err
		}
		return b.sendTodayView(ctx, chatID)
	}
	return b.sendStep(chatID, step)
}

func (b *Bot) sendStep(chatID int64, step *service.Step) error {
	return b.sendWithReplyMarkup(chatID, formatStep(step, b.cal), stepKeyboard(step))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	if cb.From.ID != b.ownerID {
		b.ack(cb, "This planner is private.")
		return nil
	}
	chatID := cb.Message.Chat.ID

	c, err := parseCallback(cb.Data)
	if err != nil {
		b.logger.Warn("unknown callback", "data", cb.Data)
		b.ack(cb, "")
		return nil
	}
	b.logger.Debug("callback", "scope", c.scope, "action", c.action, "id", c.id)

	switch c.scope {
	case scopeDay:
		b.ack(cb, "")
		return b.handleDayCallback(ctx, chatID, c)
	case scopePerson:
		return b.handlePersonCallback(ctx, cb, chatID, c)
	case scopeRollover, scopeTemplate, scopeBulk:
		toast, err := b.resolve(ctx, cb.From.ID, chatID, c)
		if err != nil {
			b.ack(cb, "")
			return b.replyError(chatID, err)
		}
		b.ack(cb, toast)
		if toast == "" {
			// Waiting for a date reply.
			return nil
		}
		return b.presentNext(ctx, chatID)
	default:
		b.ack(cb, "")
		return nil
	}
}

func (b *Bot) handleDayCallback(ctx context.Context, chatID int64, c callback) error {
	switch c.action {
	case actionDone:
		task, err := b.svc.Tasks.CompleteTask(ctx, c.id, b.now())
		if err != nil {
			return b.replyError(chatID, err)
		}
		return b.sendBucket(ctx, chatID, b.cal.BucketOf(task.ScheduledFor))
	case actionUp:
		return b.reorder(ctx, chatID, c.id, service.Up)
	case actionDown:
		return b.reorder(ctx, chatID, c.id, service.Down)
	default:
		return nil
	}
}

// resolve applies one advancement resolution and returns the toast to show. An empty
// toast means the bot now waits for a date.
func (b *Bot) resolve(ctx context.Context, userID, chatID int64, c callback) (string, error) {
	now := b.now()
	adv := b.svc.Advancement
	switch c.scope + ":" + c.action {
	case scopeRollover + ":" + actionDone:
		_, err := adv.Complete(ctx, now, c.id)
		return "✅ Done", err
	case scopeRollover + ":" + actionToday:
		_, err := adv.MoveToToday(ctx, now, c.id)
		return "📅 Moved to today", err
	case scopeRollover + ":" + actionScratch:
		_, err := adv.MoveToScratch(ctx, now, c.id)
		return "📝 Moved to the scratch pad", err
	case scopeRollover + ":" + actionArchive:
		_, err := adv.Archive(ctx, now, c.id)
		return "🗄 Archived", err
	case scopeRollover + ":" + actionDefer:
		b.setConversation(userID, &conversationState{stage: stageDeferDate, targetID: c.id})
		return "", b.askDate(chatID, "🗓 Which day? Send YYYY-MM-DD or tomorrow.")
	case scopeTemplate + ":" + actionGenerate:
		_, err := adv.GenerateToday(ctx, now, c.id)
		return "➕ Added to today", err
	case scopeTemplate + ":" + actionSkip:
		_, err := adv.Skip(ctx, now, c.id)
		return "⏭ Skipped", err
	case scopeTemplate + ":" + actionGenerateOn:
		b.setConversation(userID, &conversationState{stage: stageGenerateDate, targetID: c.id})
		return "", b.askDate(chatID, "🗓 Which day should it go on? Send YYYY-MM-DD or tomorrow.")
	case scopeBulk + ":" + actionArchive:
		n, err := adv.ArchiveAll(ctx, now)
		return fmt.Sprintf("🗄 Archived %d", n), err
	case scopeBulk + ":" + actionToday:
		n, err := adv.RescheduleAllToToday(ctx, now)
		return fmt.Sprintf("📅 Moved %d to today", n), err
	default:
		return "", fmt.Errorf("unhandled callback %s:%s", c.scope, c.action)
	}
}

func (b *Bot) askDate(chatID int64, prompt string) error {
	return b.sendWithReplyMarkup(chatID, prompt, cancelKeyboard())
}

// resolveWithDate finishes a defer or generate-on-date once the user sent the day.
func (b *Bot) resolveWithDate(ctx context.Context, chatID int64, state *conversationState, day calendar.DayKey) error {
	var (
		label string
		err   error
	)
	switch state.stage {
	case stageDeferDate:
		_, err = b.svc.Advancement.Defer(ctx, b.now(), state.targetID, day)
		label = "⏩ Deferred to %s."
	case stageGenerateDate:
		_, err = b.svc.Advancement.GenerateOnDate(ctx, b.now(), state.targetID, day)
		label = "➕ Planned for %s."
	}
	if err != nil {
		return b.replyError(chatID, err)
	}
	if err := b.sendText(chatID, fmt.Sprintf(label, b.bucketLabel(day))); err != nil {
		return err
	}
	return b.presentNext(ctx, chatID)
}
