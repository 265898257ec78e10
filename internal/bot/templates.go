package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"day-planner/internal/recurrence"
	"day-planner/internal/service"
)

func (b *Bot) startTemplateConversation(msg *tgbotapi.Message) error {
	b.setConversation(msg.From.ID, &conversationState{stage: stageTemplateTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🔁 New recurring template.\n<b>Step 1:</b> what should it remind you of?", cancelKeyboard())
}

func (b *Bot) finishTemplateCreation(ctx context.Context, chatID int64, input service.TemplateInput) error {
	tmpl, err := b.svc.Templates.Create(ctx, input)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Template #%d %s: %s.",
		tmpl.ID, escape(tmpl.Title), escape(recurrence.Describe(tmpl.Rule.Pattern))))
}

func (b *Bot) handleTemplates(ctx context.Context, chatID int64) error {
	list, err := b.svc.Templates.List(ctx, b.now())
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, formatTemplates(list))
}

func (b *Bot) handlePause(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return b.sendText(chatID, "Usage: /pause 3 2026-11-01")
	}
	id, err := parseID(fields[0])
	if err != nil {
		return b.sendText(chatID, "Usage: /pause 3 2026-11-01")
	}
	until, err := parseDayInput(fields[1], b.today())
	if err != nil {
		return b.replyError(chatID, err)
	}
	tmpl, err := b.svc.Templates.Pause(ctx, id, until)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("⏸ %s paused until %s.", escape(tmpl.Title), formatDay(until)))
}

func (b *Bot) resumeTemplate(ctx context.Context, chatID int64, id uint) error {
	tmpl, err := b.svc.Templates.Resume(ctx, id)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("▶️ %s is active again.", escape(tmpl.Title)))
}

func (b *Bot) deleteTemplate(ctx context.Context, chatID int64, id uint) error {
	if err := b.svc.Templates.Delete(ctx, id); err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("🗑 Template #%d deleted.", id))
}

func paramsPrompt(kind recurrence.Kind) string {
	switch kind {
	case recurrence.KindWeekly:
		return "Which weekdays? e.g. <code>mon,thu</code>. For every N weeks add N and the first date: <code>mon 2 2026-10-12</code>."
	case recurrence.KindMonthly:
		return "Which day of the month? <code>1</code>..<code>31</code> or <code>last</code>."
	case recurrence.KindYearly:
		return "Which date? <code>MM-DD</code>, e.g. <code>02-29</code>."
	case recurrence.KindInterval:
		return "Every how many days? e.g. <code>3</code>, optionally with the first date: <code>3 2026-10-20</code>."
	default:
		return ""
	}
}
