package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"day-planner/internal/recurrence"
	"day-planner/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTaskTitle
	stageTaskDescription
	stageTaskWhen
	stageTemplateTitle
	stageTemplateKind
	stageTemplateParams
	stageDeferDate
	stageGenerateDate
	stagePersonName
	stagePersonBirthday
	stagePersonNotes
)

type conversationState struct {
	stage    conversationStage
	task     service.TaskInput
	template service.TemplateInput
	person   service.PersonInput
	kind     recurrence.Kind
	// targetID is the task or template a date reply applies to.
	targetID uint
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch state.stage {
	case stageTaskTitle:
		if text == "" {
			return b.sendWithReplyMarkup(chatID, "The title cannot be empty.", cancelKeyboard())
		}
		state.task.Title = text
		state.stage = stageTaskDescription
		return b.sendWithReplyMarkup(chatID, "✏️ A short description? (or Skip)", skipKeyboard())
	case stageTaskDescription:
		if !isSkipInput(text) {
			state.task.Description = text
		}
		state.stage = stageTaskWhen
		return b.sendWithReplyMarkup(chatID, "📅 When? Pick a button or send <code>YYYY-MM-DD</code>.", whenKeyboard())
	case stageTaskWhen:
		placement, day, err := parseWhen(text)
		if err != nil {
			return b.sendWithReplyMarkup(chatID, "Pick a button or send a date like <code>2026-11-30</code>.", whenKeyboard())
		}
		state.task.Placement = placement
		state.task.Day = day
		b.clearConversation(msg.From.ID)
		return b.finishTaskCreation(ctx, chatID, state.task)

	case stageTemplateTitle:
		if text == "" {
			return b.sendWithReplyMarkup(chatID, "The title cannot be empty.", cancelKeyboard())
		}
		state.template.Title = text
		state.stage = stageTemplateKind
		return b.sendWithReplyMarkup(chatID, "🔁 How often?", kindKeyboard())
	case stageTemplateKind:
		kind, ok := parseKind(text)
		if !ok {
			return b.sendWithReplyMarkup(chatID, "Pick one of the buttons.", kindKeyboard())
		}
		state.kind = kind
		if kind == recurrence.KindDaily {
			state.template.Pattern = recurrence.Daily{}
			b.clearConversation(msg.From.ID)
			return b.finishTemplateCreation(ctx, chatID, state.template)
		}
		state.stage = stageTemplateParams
		return b.sendWithReplyMarkup(chatID, paramsPrompt(kind), cancelKeyboard())
	case stageTemplateParams:
		pattern, err := parsePattern(state.kind, text, b.today())
		if err != nil {
			return b.sendWithReplyMarkup(chatID, "⚠️ "+escape(errorMessage(err))+"\n"+paramsPrompt(state.kind), cancelKeyboard())
		}
		state.template.Pattern = pattern
		b.clearConversation(msg.From.ID)
		return b.finishTemplateCreation(ctx, chatID, state.template)

	case stagePersonName:
		if text == "" {
			return b.sendWithReplyMarkup(chatID, "The name cannot be empty.", cancelKeyboard())
		}
		state.person.Name = text
		state.stage = stagePersonBirthday
		return b.sendWithReplyMarkup(chatID, birthdayPrompt, cancelKeyboard())
	case stagePersonBirthday:
		birthday, err := parseBirthday(text, b.today())
		if err != nil {
			return b.sendWithReplyMarkup(chatID, "⚠️ "+escape(errorMessage(err))+"\n"+birthdayPrompt, cancelKeyboard())
		}
		state.person.Birthday = birthday
		state.stage = stagePersonNotes
		return b.sendWithReplyMarkup(chatID, "📝 Any notes, like gift ideas? (or Skip)", skipKeyboard())
	case stagePersonNotes:
		if !isSkipInput(text) {
			state.person.Notes = text
		}
		b.clearConversation(msg.From.ID)
		return b.finishPersonCreation(ctx, chatID, state.person)

	case stageDeferDate, stageGenerateDate:
		day, err := parseDayInput(text, b.today())
		if err != nil {
			return b.sendWithReplyMarkup(chatID, "Send a date like <code>2026-11-30</code> or tomorrow.", cancelKeyboard())
		}
		b.clearConversation(msg.From.ID)
		return b.resolveWithDate(ctx, chatID, state, day)

	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(chatID, "Conversation reset. Start again with /add.")
	}
}
