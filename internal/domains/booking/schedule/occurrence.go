package schedule

import (
	"errors"
	"slices"
	"time"
)

var ErrUnknownKind = errors.New("recurrence type must be one of daily, weekly, monthly")

// Kind is the repetition pattern of a recurring booking.
type Kind string

const (
	KindDaily   Kind = "daily"
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
)

func (k Kind) Valid() bool {
	switch k {
	case KindDaily, KindWeekly, KindMonthly:
		return true
	default:
		return false
	}
}

// Occurrences expands a recurrence rule into the ordered calendar dates it covers,
// both ends inclusive. Time of day is ignored and the result is expressed at midnight
// in the location of start. An end before start yields no dates.
//
// weekdays only applies to weekly rules; when empty the weekday of start is used.
func Occurrences(start, end time.Time, kind Kind, weekdays []time.Weekday) ([]time.Time, error) {
	if !kind.Valid() {
		return nil, ErrUnknownKind
	}

	first := dateOf(start)
	last := dateOf(end.In(start.Location()))

	if last.Before(first) {
		return []time.Time{}, nil
	}

	switch kind {
	case KindDaily:
		return daily(first, last), nil
	case KindWeekly:
		return weekly(first, last, weekdays), nil
	default:
		return monthly(first, last), nil
	}
}

func daily(first, last time.Time) []time.Time {
	dates := make([]time.Time, 0, int(last.Sub(first).Hours()/24)+1)

	for current := first; !current.After(last); current = current.AddDate(0, 0, 1) {
		dates = append(dates, current)
	}

	return dates
}

func weekly(first, last time.Time, weekdays []time.Weekday) []time.Time {
	selected := [7]bool{}
	if len(weekdays) == 0 {
		selected[first.Weekday()] = true
	}

	for _, day := range weekdays {
		if day >= time.Sunday && day <= time.Saturday {
			selected[day] = true
		}
	}

	dates := []time.Time{}

	for current := first; !current.After(last); current = current.AddDate(0, 0, 1) {
		if selected[current.Weekday()] {
			dates = append(dates, current)
		}
	}

	return dates
}

// monthly keeps the day of month of first. A month too short for that day falls back
// to its last day, and later months continue from the fallen-back day.
func monthly(first, last time.Time) []time.Time {
	dates := []time.Time{}

	for current := first; !current.After(last); current = nextMonth(current) {
		dates = append(dates, current)
	}

	return dates
}

func nextMonth(t time.Time) time.Time {
	target := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())

	day := t.Day()
	if lastDay := daysIn(target); day > lastDay {
		day = lastDay
	}

	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, t.Location())
}

func daysIn(month time.Time) int {
	return time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, month.Location()).Day()
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NormalizeWeekdays sorts and deduplicates a weekday set, dropping values outside 0..6.
func NormalizeWeekdays(days []int) []time.Weekday {
	weekdays := make([]time.Weekday, 0, len(days))

	for _, day := range days {
		weekday := time.Weekday(day)
		if weekday < time.Sunday || weekday > time.Saturday || slices.Contains(weekdays, weekday) {
			continue
		}

		weekdays = append(weekdays, weekday)
	}

	slices.Sort(weekdays)

	return weekdays
}
