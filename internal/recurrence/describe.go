package recurrence

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Describe renders p for people, e.g. "Every other Tuesday" or "Monthly on the last day".
func Describe(p Pattern) string {
	switch v := p.(type) {
	case Daily:
		return "Daily"
	case Weekly:
		days := weekdayList(v.Days)
		switch v.every() {
		case 1:
			return "Every " + days
		case 2:
			return "Every other " + days
		default:
			return fmt.Sprintf("Every %d weeks on %s", v.every(), days)
		}
	case Monthly:
		if v.Day == LastDay {
			return "Monthly on the last day"
		}
		return fmt.Sprintf("Monthly on day %d", v.Day)
	case Yearly:
		return fmt.Sprintf("Yearly on %s %d", v.Month, v.Day)
	case Interval:
		if v.Days == 1 {
			return "Every day"
		}
		return fmt.Sprintf("Every %d days", v.Days)
	default:
		return "Unknown pattern"
	}
}

func weekdayList(days []time.Weekday) string {
	sorted := append([]time.Weekday(nil), days...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	names := make([]string, 0, len(sorted))
	for i, d := range sorted {
		if i > 0 && d == sorted[i-1] {
			continue
		}
		names = append(names, d.String())
	}
	return strings.Join(names, ", ")
}
