package bot

import (
	"fmt"
	"html"
	"strings"

	"day-planner/internal/calendar"
	"day-planner/internal/model"
	"day-planner/internal/recurrence"
	"day-planner/internal/service"
)

func formatDay(day calendar.DayKey) string {
	return day.Date().Format("Mon, Jan 2")
}

func formatBucket(title string, tasks []model.Task) string {
	var builder strings.Builder
	builder.WriteString(title)
	builder.WriteString("\n\n")
	if len(tasks) == 0 {
		builder.WriteString("Nothing here. /add plans a task.")
		return builder.String()
	}
	for i, task := range tasks {
		builder.WriteString(formatTaskLine(i+1, task))
	}
	return strings.TrimSpace(builder.String())
}

func formatTaskLine(n int, task model.Task) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d. %s <code>#%d</code>", n, escape(normalizeTitle(task.Title)), task.ID))
	if len(task.Checklist) > 0 {
		sb.WriteString(fmt.Sprintf(" <i>(%d/%d)</i>", task.ChecklistDone(), len(task.Checklist)))
	}
	if task.Rollovers > 0 {
		sb.WriteString(fmt.Sprintf(" ⏪%d", task.Rollovers))
	}
	if task.GeneratedFrom != nil {
		sb.WriteString(" ♻️")
	}
	sb.WriteByte('\n')
	return sb.String()
}

func formatTaskDetail(task model.Task) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>%s</b> <code>#%d</code>\n", escape(normalizeTitle(task.Title)), task.ID))
	if task.Description != "" {
		sb.WriteString(escape(task.Description))
		sb.WriteByte('\n')
	}
	if task.URL != "" {
		sb.WriteString(fmt.Sprintf("🔗 %s\n", escape(task.URL)))
	}
	for i, item := range task.Checklist {
		mark := "☐"
		if item.Done {
			mark = "☑"
		}
		sb.WriteString(fmt.Sprintf("%s %d. %s\n", mark, i+1, escape(item.Text)))
	}
	return strings.TrimSpace(sb.String())
}

func formatStep(step *service.Step, cal *calendar.Calendar) string {
	var sb strings.Builder
	if step.Item.IsTask() {
		task := step.Item.Task
		sb.WriteString(fmt.Sprintf("⏪ <b>Rollover</b> · %d left\n\n", step.Remaining))
		sb.WriteString(formatTaskDetail(*task))
		sb.WriteString(fmt.Sprintf("\n\nPlanned for %s", formatDay(cal.BucketOf(task.ScheduledFor))))
		if task.Rollovers > 0 {
			sb.WriteString(fmt.Sprintf(", rolled over %s", times(task.Rollovers)))
		}
		sb.WriteByte('.')
		return sb.String()
	}
	tmpl := step.Item.Template
	sb.WriteString(fmt.Sprintf("🔁 <b>Recurring</b> · %d left\n\n", step.Remaining))
	sb.WriteString(fmt.Sprintf("<b>%s</b>\n", escape(normalizeTitle(tmpl.Title))))
	if tmpl.Description != "" {
		sb.WriteString(escape(tmpl.Description))
		sb.WriteByte('\n')
	}
	sb.WriteString(fmt.Sprintf("<i>%s</i>", escape(describe(tmpl))))
	return sb.String()
}

func formatTemplates(list []service.TemplateSummary) string {
	if len(list) == 0 {
		return "No recurring templates yet. /newtemplate adds one."
	}
	var sb strings.Builder
	sb.WriteString("🔁 <b>Templates</b>\n\n")
	for _, s := range list {
		t := s.Template
		sb.WriteString(fmt.Sprintf("<code>#%d</code> %s · %s", t.ID, escape(normalizeTitle(t.Title)), escape(s.Description)))
		switch {
		case !t.IsActive:
			sb.WriteString(" · off")
		case !t.PausedUntil.IsZero() && !s.Next.IsZero() && s.Next == t.PausedUntil:
			sb.WriteString(fmt.Sprintf(" · paused until %s", formatDay(t.PausedUntil)))
		case !s.Next.IsZero():
			sb.WriteString(fmt.Sprintf(" · next %s", formatDay(s.Next)))
		}
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String())
}

func formatHistory(completed, archived []model.Task) string {
	if len(completed) == 0 && len(archived) == 0 {
		return "Nothing finished yet."
	}
	var sb strings.Builder
	if len(completed) > 0 {
		sb.WriteString("✅ <b>Recently done</b>\n")
		for _, task := range completed {
			sb.WriteString(fmt.Sprintf("<code>#%d</code> %s\n", task.ID, escape(normalizeTitle(task.Title))))
		}
		sb.WriteByte('\n')
	}
	if len(archived) > 0 {
		sb.WriteString("🗄 <b>Recently archived</b>\n")
		for _, task := range archived {
			sb.WriteString(fmt.Sprintf("<code>#%d</code> %s\n", task.ID, escape(normalizeTitle(task.Title))))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("/restore &lt;id&gt; puts one back on today.")
	return sb.String()
}

func describe(tmpl *model.Template) string {
	return recurrence.Describe(tmpl.Rule.Pattern)
}

func times(n int) string {
	if n == 1 {
		return "once"
	}
	return fmt.Sprintf("%d times", n)
}

func shortTitle(title string, maxLen int) string {
	clean := normalizeTitle(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

// normalizeTitle collapses runs of whitespace.
func normalizeTitle(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func escape(s string) string {
	return html.EscapeString(s)
}
