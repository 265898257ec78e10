package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"day-planner/internal/apperr"
	"day-planner/internal/calendar"
	"day-planner/internal/model"
	"day-planner/internal/recurrence"
)

// PersonInput represents data required to start tracking someone's birthday.
type PersonInput struct {
	Name     string
	Birthday recurrence.Birthday
	Notes    string
}

// PersonSummary is a person with their next birthday relative to today.
type PersonSummary struct {
	Person    model.Person
	Next      calendar.DayKey
	DaysUntil int
	// Turning is the age reached on Next. HasAge is false when the birth year is unknown.
	Turning int
	HasAge  bool
}

// PeopleService tracks birthdays. They are reminders, not tasks: nothing here touches
// the rollover queue.
type PeopleService struct {
	people PersonStore
	cal    *calendar.Calendar
	logger *slog.Logger
}

func NewPeopleService(people PersonStore, cal *calendar.Calendar, logger *slog.Logger) *PeopleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PeopleService{people: people, cal: cal, logger: logger}
}

func (s *PeopleService) Create(ctx context.Context, now time.Time, input PersonInput) (*model.Person, error) {
	name := strings.Join(strings.Fields(input.Name), " ")
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if err := input.Birthday.Validate(s.cal.Key(now)); err != nil {
		return nil, err
	}
	person := model.Person{
		Name:       name,
		BirthMonth: input.Birthday.Month,
		BirthDay:   input.Birthday.Day,
		BirthYear:  input.Birthday.Year,
		Notes:      strings.TrimSpace(input.Notes),
	}
	if err := s.people.Create(ctx, &person); err != nil {
		return nil, err
	}
	s.logger.Info("person added", "person_id", person.ID, "birthday", input.Birthday.String())
	return &person, nil
}

func (s *PeopleService) Get(ctx context.Context, id uint) (*model.Person, error) {
	return s.people.FindByID(ctx, id)
}

func (s *PeopleService) Delete(ctx context.Context, id uint) error {
	if _, err := s.people.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.people.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("person deleted", "person_id", id)
	return nil
}

// List returns everyone ordered by how soon their birthday comes, today first.
func (s *PeopleService) List(ctx context.Context, now time.Time) ([]PersonSummary, error) {
	all, err := s.people.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	today := s.cal.Key(now)
	out := make([]PersonSummary, 0, len(all))
	for _, person := range all {
		out = append(out, summarize(person, today))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Next != out[j].Next {
			return out[i].Next.Before(out[j].Next)
		}
		if out[i].Person.Name != out[j].Person.Name {
			return out[i].Person.Name < out[j].Person.Name
		}
		return out[i].Person.ID < out[j].Person.ID
	})
	return out, nil
}

// Upcoming returns the people whose birthday falls within the next days days,
// today included.
func (s *PeopleService) Upcoming(ctx context.Context, now time.Time, days int) ([]PersonSummary, error) {
	all, err := s.List(ctx, now)
	if err != nil {
		return nil, err
	}
	var out []PersonSummary
	for _, summary := range all {
		if summary.DaysUntil < days {
			out = append(out, summary)
		}
	}
	return out, nil
}

// BirthdaysToday returns the people whose birthday is today and not yet acknowledged.
func (s *PeopleService) BirthdaysToday(ctx context.Context, now time.Time) ([]PersonSummary, error) {
	all, err := s.List(ctx, now)
	if err != nil {
		return nil, err
	}
	today := s.cal.Key(now)
	var out []PersonSummary
	for _, summary := range all {
		if summary.DaysUntil == 0 && !summary.Person.AcknowledgedIn(today.Year()) {
			out = append(out, summary)
		}
	}
	return out, nil
}

// Acknowledge marks today's birthday as seen so it is not raised again this year.
func (s *PeopleService) Acknowledge(ctx context.Context, now time.Time, id uint) (*model.Person, error) {
	person, err := s.people.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	today := s.cal.Key(now)
	if !person.Birthday().On(today) {
		return nil, apperr.Validation("today is not %s's birthday", person.Name)
	}
	if person.AcknowledgedIn(today.Year()) {
		return nil, apperr.Validation("%s's birthday was already acknowledged", person.Name)
	}
	person.LastAcknowledgedYear = today.Year()
	if err := s.people.Save(ctx, person); err != nil {
		return nil, err
	}
	s.logger.Info("birthday acknowledged", "person_id", person.ID, "year", today.Year())
	return person, nil
}

func summarize(person model.Person, today calendar.DayKey) PersonSummary {
	birthday := person.Birthday()
	next := birthday.Next(today)
	summary := PersonSummary{
		Person:    person,
		Next:      next,
		DaysUntil: calendar.DaysBetween(today, next),
	}
	summary.Turning, summary.HasAge = birthday.TurningOn(today)
	return summary
}
