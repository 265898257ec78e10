package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"day-planner/internal/service"
)

const birthdayPrompt = "🎂 When is the birthday? <code>MM-DD</code>, or <code>YYYY-MM-DD</code> if you know the year."

func (b *Bot) startPersonConversation(msg *tgbotapi.Message) error {
	b.setConversation(msg.From.ID, &conversationState{stage: stagePersonName})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🎂 New birthday.\n<b>Step 1:</b> whose is it?", cancelKeyboard())
}

func (b *Bot) finishPersonCreation(ctx context.Context, chatID int64, input service.PersonInput) error {
	person, err := b.svc.People.Create(ctx, b.now(), input)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Saved #%d %s, %s.",
		person.ID, escape(person.Name), person.Birthday().String()))
}

func (b *Bot) handlePeople(ctx context.Context, chatID int64) error {
	list, err := b.svc.People.List(ctx, b.now())
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, formatPeople(list))
}

func (b *Bot) deletePerson(ctx context.Context, chatID int64, id uint) error {
	if err := b.svc.People.Delete(ctx, id); err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("🗑 Person #%d deleted.", id))
}

// sendTodayView shows today's plan followed by any birthday not yet acknowledged.
func (b *Bot) sendTodayView(ctx context.Context, chatID int64) error {
	if err := b.sendBucket(ctx, chatID, b.today()); err != nil {
		return err
	}
	birthdays, err := b.svc.People.BirthdaysToday(ctx, b.now())
	if err != nil {
		return b.replyError(chatID, err)
	}
	for _, s := range birthdays {
		text := "🎉 " + service.FormatBirthday(s)
		if notes := strings.TrimSpace(s.Person.Notes); notes != "" {
			text += "\n<i>" + escape(notes) + "</i>"
		}
		if err := b.sendWithReplyMarkup(chatID, text, birthdayKeyboard(s.Person.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) handlePersonCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, chatID int64, c callback) error {
	if c.action != actionAck {
		b.ack(cb, "")
		return nil
	}
	person, err := b.svc.People.Acknowledge(ctx, b.now(), c.id)
	if err != nil {
		b.ack(cb, "")
		return b.replyError(chatID, err)
	}
	b.ack(cb, "🎉 Noted")
	return b.sendText(chatID, fmt.Sprintf("🎂 Don't forget to congratulate %s!", escape(person.Name)))
}

func birthdayKeyboard(id uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎉 Got it", callbackData(scopePerson, actionAck, id)),
		),
	)
}

func formatPeople(list []service.PersonSummary) string {
	if len(list) == 0 {
		return "No birthdays yet. /addperson adds one."
	}
	var sb strings.Builder
	sb.WriteString("🎂 <b>Birthdays</b>\n\n")
	for _, s := range list {
		sb.WriteString(fmt.Sprintf("<code>#%d</code> %s · %s", s.Person.ID, service.FormatBirthday(s), s.Person.Birthday().String()))
		if s.Person.Notes != "" {
			sb.WriteString(" · " + escape(s.Person.Notes))
		}
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String())
}
