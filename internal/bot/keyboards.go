package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"day-planner/internal/model"
	"day-planner/internal/recurrence"
	"day-planner/internal/service"
)

const (
	btnSkip     = "⏭️ Skip"
	btnCancel   = "↩️ Cancel"
	btnToday    = "📅 Today"
	btnTomorrow = "🌅 Tomorrow"
	btnScratch  = "📝 Scratch pad"

	menuLabelToday    = "🔥 Today"
	menuLabelTomorrow = "🌅 Tomorrow"
	menuLabelScratch  = "📝 Scratch"
	menuLabelAdd      = "➕ Add"
	menuLabelAdvance  = "⏪ Advance"
	menuLabelHelp     = "ℹ️ Help"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelToday),
			tgbotapi.NewKeyboardButton(menuLabelTomorrow),
			tgbotapi.NewKeyboardButton(menuLabelScratch),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelAdd),
			tgbotapi.NewKeyboardButton(menuLabelAdvance),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func whenKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnToday),
			tgbotapi.NewKeyboardButton(btnTomorrow),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnScratch),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func kindKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var row []tgbotapi.KeyboardButton
	for _, kind := range recurrence.Kinds {
		label := string(kind)
		row = append(row, tgbotapi.NewKeyboardButton(strings.ToUpper(label[:1])+label[1:]))
	}
	kb := tgbotapi.NewReplyKeyboard(
		row,
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// taskListKeyboard gives every task a done button and reorder arrows.
func taskListKeyboard(tasks []model.Task) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ #%d · %s", task.ID, shortTitle(task.Title, 24)), callbackData(scopeDay, actionDone, task.ID)),
			tgbotapi.NewInlineKeyboardButtonData("⬆️", callbackData(scopeDay, actionUp, task.ID)),
			tgbotapi.NewInlineKeyboardButtonData("⬇️", callbackData(scopeDay, actionDown, task.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// stepKeyboard offers the resolutions allowed for the current advancement item.
func stepKeyboard(step *service.Step) tgbotapi.InlineKeyboardMarkup {
	if !step.Item.IsTask() {
		id := step.Item.Template.ID
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("➕ Add today", callbackData(scopeTemplate, actionGenerate, id)),
				tgbotapi.NewInlineKeyboardButtonData("🗓 Pick a day", callbackData(scopeTemplate, actionGenerateOn, id)),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("⏭ Skip today", callbackData(scopeTemplate, actionSkip, id)),
			),
		)
	}

	id := step.Item.Task.ID
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Done", callbackData(scopeRollover, actionDone, id)),
			tgbotapi.NewInlineKeyboardButtonData("📅 Today", callbackData(scopeRollover, actionToday, id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗓 Pick a day", callbackData(scopeRollover, actionDefer, id)),
			tgbotapi.NewInlineKeyboardButtonData("📝 Scratch", callbackData(scopeRollover, actionScratch, id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗄 Archive", callbackData(scopeRollover, actionArchive, id)),
		),
	}
	if step.Overdue > 1 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🗄 Archive all %d", step.Overdue), scopeBulk+":"+actionArchive),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("📅 All %d to today", step.Overdue), scopeBulk+":"+actionToday),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
