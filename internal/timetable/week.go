package timetable

import (
	"time"

	"lms-timetable/internal/domain"
)

// WeekStart returns midnight of the Monday on or before anchor, in anchor's
// location.
func WeekStart(anchor time.Time) time.Time {
	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func WeekEnd(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, len(domain.Weekdays)-1)
}

// DayDate returns the date of a canonical day within the week starting at
// weekStart.
func DayDate(weekStart time.Time, day string) (time.Time, bool) {
	offset, ok := domain.DayOffset(day)
	if !ok {
		return time.Time{}, false
	}
	return weekStart.AddDate(0, 0, offset), true
}

// ParseWeekAnchor parses an optional "YYYY-MM-DD" anchor in loc. Blank means
// now.
func ParseWeekAnchor(value string, now time.Time, loc *time.Location) (time.Time, error) {
	if value == "" {
		return now.In(loc), nil
	}
	return time.ParseInLocation(DateLayout, value, loc)
}
