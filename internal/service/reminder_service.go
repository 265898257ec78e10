package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"day-planner/internal/calendar"
	"day-planner/internal/model"
)

// ReminderService builds human-readable summaries for scheduled notifications.
type ReminderService struct {
	tasks     *TaskService
	collector *RolloverCollector
	people    *PeopleService
	cal       *calendar.Calendar
}

// upcomingBirthdayDays is how far ahead the summary looks for birthdays.
const upcomingBirthdayDays = 7

func NewReminderService(tasks *TaskService, collector *RolloverCollector, people *PeopleService, cal *calendar.Calendar) *ReminderService {
	return &ReminderService{tasks: tasks, collector: collector, people: people, cal: cal}
}

// DailySummary renders today's plan, the waiting rollover and the scratch pad size as
// Telegram HTML.
func (s *ReminderService) DailySummary(ctx context.Context, now time.Time) (string, error) {
	day, today, err := s.tasks.TodayView(ctx, now)
	if err != nil {
		return "", err
	}
	rollover, err := s.collector.Collect(ctx, now)
	if err != nil {
		return "", err
	}
	scratch, err := s.tasks.ScratchPad(ctx)
	if err != nil {
		return "", err
	}
	birthdays, err := s.people.Upcoming(ctx, now, upcomingBirthdayDays)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily summary</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", day.Date().Format("Monday, January 2 2006")))

	if !rollover.Empty() {
		builder.WriteString(fmt.Sprintf("⏪ %s and %s waiting. Run /advance.\n\n",
			plural(len(rollover.OverdueTasks), "rollover task", "rollover tasks"),
			plural(len(rollover.DueTemplates), "recurring prompt", "recurring prompts")))
	}

	if len(birthdays) > 0 {
		builder.WriteString(formatBirthdays(birthdays))
		builder.WriteByte('\n')
	}

	builder.WriteString("🔥 <b>Today</b>\n")
	if len(today) == 0 {
		builder.WriteString("— nothing planned\n")
	} else {
		for i, task := range today {
			builder.WriteString(formatTask(i+1, task))
		}
	}

	builder.WriteString(fmt.Sprintf("\n📝 Scratch pad: %s\n", plural(len(scratch), "task", "tasks")))
	return strings.TrimSpace(builder.String()), nil
}

// MorningNudge is the summary sent at the start of the day. It leads with the rollover
// when advancement is pending.
func (s *ReminderService) MorningNudge(ctx context.Context, now time.Time) (string, error) {
	summary, err := s.DailySummary(ctx, now)
	if err != nil {
		return "", err
	}
	return "☀️ <b>Good morning!</b>\n\n" + summary, nil
}

func formatTask(n int, task model.Task) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d. %s", n, html.EscapeString(strings.TrimSpace(task.Title))))
	if len(task.Checklist) > 0 {
		sb.WriteString(fmt.Sprintf(" <i>(%d/%d)</i>", task.ChecklistDone(), len(task.Checklist)))
	}
	if task.Rollovers > 0 {
		sb.WriteString(fmt.Sprintf(" ⏪%d", task.Rollovers))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func formatBirthdays(birthdays []PersonSummary) string {
	var sb strings.Builder
	sb.WriteString("🎂 <b>Birthdays</b>\n")
	for _, b := range birthdays {
		sb.WriteString(FormatBirthday(b))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatBirthday renders one birthday line as Telegram HTML, e.g.
// "Ada today, turns 36" or "Bob in 3 days (October 20)".
func FormatBirthday(b PersonSummary) string {
	var sb strings.Builder
	sb.WriteString(html.EscapeString(b.Person.Name))
	switch b.DaysUntil {
	case 0:
		sb.WriteString(" today")
	case 1:
		sb.WriteString(" tomorrow")
	default:
		sb.WriteString(fmt.Sprintf(" in %d days (%s)", b.DaysUntil, b.Next.Date().Format("January 2")))
	}
	if b.HasAge {
		sb.WriteString(fmt.Sprintf(", turns %d", b.Turning))
	}
	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
