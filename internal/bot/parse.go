package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"day-planner/internal/apperr"
	"day-planner/internal/calendar"
	"day-planner/internal/recurrence"
	"day-planner/internal/service"
)

// Callback data is "<scope>:<action>" with an optional ":<id>".
const (
	scopeDay      = "d"
	scopeRollover = "t"
	scopeTemplate = "r"
	scopePerson   = "p"
	scopeBulk     = "bulk"

	actionDone       = "done"
	actionUp         = "up"
	actionDown       = "down"
	actionToday      = "today"
	actionDefer      = "defer"
	actionScratch    = "scratch"
	actionArchive    = "archive"
	actionGenerate   = "gen"
	actionGenerateOn = "gendate"
	actionSkip       = "skip"
	actionAck        = "ack"
)

type callback struct {
	scope  string
	action string
	id     uint
}

func callbackData(scope, action string, id uint) string {
	return fmt.Sprintf("%s:%s:%d", scope, action, id)
}

func parseCallback(data string) (callback, error) {
	parts := strings.Split(data, ":")
	if parts[0] == scopeBulk {
		if len(parts) != 2 || (parts[1] != actionArchive && parts[1] != actionToday) {
			return callback{}, fmt.Errorf("malformed callback %q", data)
		}
		return callback{scope: scopeBulk, action: parts[1]}, nil
	}
	if len(parts) != 3 {
		return callback{}, fmt.Errorf("malformed callback %q", data)
	}
	switch parts[0] {
	case scopeDay, scopeRollover, scopeTemplate, scopePerson:
	default:
		return callback{}, fmt.Errorf("unknown callback scope %q", parts[0])
	}
	id, err := parseID(parts[2])
	if err != nil {
		return callback{}, fmt.Errorf("malformed callback %q: %w", data, err)
	}
	return callback{scope: parts[0], action: parts[1], id: id}, nil
}

func parseID(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || value == 0 {
		return 0, apperr.Validation("%q is not a valid id", raw)
	}
	return uint(value), nil
}

// parseBirthday accepts MM-DD, or YYYY-MM-DD when the birth year is known.
func parseBirthday(text string, today calendar.DayKey) (recurrence.Birthday, error) {
	parts := strings.Split(strings.TrimSpace(text), "-")
	var b recurrence.Birthday
	nums := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return b, apperr.Validation("expected MM-DD or YYYY-MM-DD, got %q", text)
		}
		nums[i] = n
	}
	switch len(nums) {
	case 2:
		b = recurrence.Birthday{Month: time.Month(nums[0]), Day: nums[1]}
	case 3:
		b = recurrence.Birthday{Year: nums[0], Month: time.Month(nums[1]), Day: nums[2]}
		if b.Year == 0 {
			return recurrence.Birthday{}, apperr.Validation("year 0 is not a birth year")
		}
	default:
		return b, apperr.Validation("expected MM-DD or YYYY-MM-DD, got %q", text)
	}
	if err := b.Validate(today); err != nil {
		return recurrence.Birthday{}, err
	}
	return b, nil
}

// parseDayInput accepts today, tomorrow or YYYY-MM-DD.
func parseDayInput(text string, today calendar.DayKey) (calendar.DayKey, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	}
	return calendar.ParseDayKey(strings.TrimSpace(text))
}

func parseWhen(text string) (service.Placement, calendar.DayKey, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "today", strings.ToLower(btnToday):
		return service.PlaceToday, "", nil
	case "tomorrow", strings.ToLower(btnTomorrow):
		return service.PlaceTomorrow, "", nil
	case "scratch", "scratch pad", strings.ToLower(btnScratch):
		return service.PlaceScratch, "", nil
	}
	day, err := calendar.ParseDayKey(strings.TrimSpace(text))
	if err != nil {
		return 0, "", err
	}
	return service.PlaceDate, day, nil
}

func parseKind(text string) (recurrence.Kind, bool) {
	want := recurrence.Kind(strings.ToLower(strings.TrimSpace(text)))
	for _, kind := range recurrence.Kinds {
		if kind == want {
			return kind, true
		}
	}
	return "", false
}

// parsePattern reads the parameters typed for kind and validates the result.
func parsePattern(kind recurrence.Kind, text string, today calendar.DayKey) (recurrence.Pattern, error) {
	fields := strings.Fields(strings.ToLower(text))
	var p recurrence.Pattern
	switch kind {
	case recurrence.KindDaily:
		p = recurrence.Daily{}
	case recurrence.KindWeekly:
		if len(fields) == 0 || len(fields) > 3 {
			return nil, apperr.Validation("expected weekdays, an optional week count and first date")
		}
		w := recurrence.Weekly{Interval: 1}
		for _, name := range strings.Split(fields[0], ",") {
			day, ok := parseWeekday(name)
			if !ok {
				return nil, apperr.Validation("unknown weekday %q", name)
			}
			w.Days = append(w.Days, day)
		}
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, apperr.Validation("week count must be a number, got %q", fields[1])
			}
			w.Interval = n
		}
		if len(fields) > 2 {
			anchor, err := calendar.ParseDayKey(fields[2])
			if err != nil {
				return nil, err
			}
			w.Anchor = anchor
		}
		p = w
	case recurrence.KindMonthly:
		if len(fields) != 1 {
			return nil, apperr.Validation("expected one day of the month")
		}
		if fields[0] == "last" {
			p = recurrence.Monthly{Day: recurrence.LastDay}
			break
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, apperr.Validation("day of month must be a number or last, got %q", fields[0])
		}
		p = recurrence.Monthly{Day: n}
	case recurrence.KindYearly:
		if len(fields) != 1 {
			return nil, apperr.Validation("expected MM-DD")
		}
		rawMonth, rawDay, ok := strings.Cut(fields[0], "-")
		month, errMonth := strconv.Atoi(rawMonth)
		day, errDay := strconv.Atoi(rawDay)
		if !ok || errMonth != nil || errDay != nil {
			return nil, apperr.Validation("expected MM-DD, got %q", fields[0])
		}
		p = recurrence.Yearly{Month: time.Month(month), Day: day}
	case recurrence.KindInterval:
		if len(fields) == 0 || len(fields) > 2 {
			return nil, apperr.Validation("expected a day count and an optional first date")
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, apperr.Validation("day count must be a number, got %q", fields[0])
		}
		anchor := today
		if len(fields) == 2 {
			if anchor, err = calendar.ParseDayKey(fields[1]); err != nil {
				return nil, err
			}
		}
		p = recurrence.Interval{Days: n, Anchor: anchor}
	default:
		return nil, apperr.Validation("unknown pattern kind %q", kind)
	}
	if err := recurrence.Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

func parseWeekday(name string) (time.Weekday, bool) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return 0, false
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.HasPrefix(strings.ToLower(d.String()), name) {
			return d, true
		}
	}
	return 0, false
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == "skip" || value == strings.ToLower(btnSkip)
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "cancel" || value == strings.ToLower(btnCancel)
}
