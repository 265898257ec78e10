package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"day-planner/internal/apperr"
	"day-planner/internal/calendar"
	"day-planner/internal/model"
	"day-planner/internal/recurrence"
)

// TemplateInput represents data required to create or edit a recurring template.
type TemplateInput struct {
	Title       string
	Description string
	URL         string
	Pattern     recurrence.Pattern
}

// TemplateSummary is a template with its human-readable rule and next firing day.
type TemplateSummary struct {
	Template    model.Template
	Description string
	Next        calendar.DayKey
}

type TemplateService struct {
	templates TemplateStore
	cal       *calendar.Calendar
	logger    *slog.Logger
}

func NewTemplateService(templates TemplateStore, cal *calendar.Calendar, logger *slog.Logger) *TemplateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateService{templates: templates, cal: cal, logger: logger}
}

func (s *TemplateService) Create(ctx context.Context, input TemplateInput) (*model.Template, error) {
	tmpl := model.Template{IsActive: true}
	if err := applyTemplateInput(&tmpl, input); err != nil {
		return nil, err
	}
	if err := s.templates.Create(ctx, &tmpl); err != nil {
		return nil, err
	}
	s.logger.Info("template created", "template_id", tmpl.ID, "kind", tmpl.Rule.Kind())
	return &tmpl, nil
}

func (s *TemplateService) Get(ctx context.Context, id uint) (*model.Template, error) {
	return s.templates.FindByID(ctx, id)
}

// Update replaces the editable fields. Firing history (LastGeneratedFor) is kept.
func (s *TemplateService) Update(ctx context.Context, id uint, input TemplateInput) (*model.Template, error) {
	tmpl, err := s.templates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyTemplateInput(tmpl, input); err != nil {
		return nil, err
	}
	if err := s.templates.Save(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// List returns every template, active or not, with its next occurrence from today.
func (s *TemplateService) List(ctx context.Context, now time.Time) ([]TemplateSummary, error) {
	all, err := s.templates.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	today := s.cal.Key(now)
	out := make([]TemplateSummary, 0, len(all))
	for _, tmpl := range all {
		summary := TemplateSummary{Template: tmpl, Description: recurrence.Describe(tmpl.Rule.Pattern)}
		next, ok, err := tmpl.Schedule().NextOccurrence(today)
		if err != nil {
			s.logger.Warn("template has no usable pattern", "template_id", tmpl.ID, "error", err)
		} else if ok {
			summary.Next = next
		}
		out = append(out, summary)
	}
	return out, nil
}

// Pause suppresses the template on every day before until.
func (s *TemplateService) Pause(ctx context.Context, id uint, until calendar.DayKey) (*model.Template, error) {
	if !until.Valid() {
		return nil, apperr.Validation("invalid date %q, expected YYYY-MM-DD", until)
	}
	tmpl, err := s.templates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tmpl.PausedUntil = until
	if err := s.templates.Save(ctx, tmpl); err != nil {
		return nil, err
	}
	s.logger.Info("template paused", "template_id", tmpl.ID, "until", until)
	return tmpl, nil
}

// Resume clears any pause and reactivates the template.
func (s *TemplateService) Resume(ctx context.Context, id uint) (*model.Template, error) {
	tmpl, err := s.templates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tmpl.PausedUntil = ""
	tmpl.IsActive = true
	if err := s.templates.Save(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (s *TemplateService) SetActive(ctx context.Context, id uint, active bool) (*model.Template, error) {
	tmpl, err := s.templates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tmpl.IsActive = active
	if err := s.templates.Save(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// Delete removes the template. Tasks it generated keep a dangling GeneratedFrom.
func (s *TemplateService) Delete(ctx context.Context, id uint) error {
	if _, err := s.templates.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.templates.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("template deleted", "template_id", id)
	return nil
}

func applyTemplateInput(tmpl *model.Template, input TemplateInput) error {
	title, err := cleanTitle(input.Title)
	if err != nil {
		return err
	}
	link, err := cleanURL(input.URL)
	if err != nil {
		return err
	}
	if err := recurrence.Validate(input.Pattern); err != nil {
		return err
	}
	tmpl.Title = title
	tmpl.Description = strings.TrimSpace(input.Description)
	tmpl.URL = link
	tmpl.Rule = recurrence.Rule{Pattern: input.Pattern}
	return nil
}
