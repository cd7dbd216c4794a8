package timetable

import (
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	clockLayout = "15:04"

	// TimePlaceholder replaces a single time value that cannot be parsed.
	TimePlaceholder = "-"
	// UnknownTimeRange replaces a range with a missing or unparsable bound.
	UnknownTimeRange = "unknown"
)

var clockLayouts = []string{
	"15:04",
	"15:04:05",
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseClock accepts "HH:mm", "HH:mm:ss" and full ISO datetimes. Datetimes
// keep the wall clock of their own offset.
func ParseClock(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range clockLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	for _, layout := range dateTimeLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// FormatClock normalizes any accepted time shape to "HH:mm".
func FormatClock(value string) string {
	parsed, ok := ParseClock(value)
	if !ok {
		return TimePlaceholder
	}
	return parsed.Format(clockLayout)
}

func FormatTimeRange(start, end string) string {
	startClock, ok := ParseClock(start)
	if !ok {
		return UnknownTimeRange
	}
	endClock, ok := ParseClock(end)
	if !ok {
		return UnknownTimeRange
	}
	return startClock.Format(clockLayout) + " - " + endClock.Format(clockLayout)
}

// ClockMinutes returns minutes since midnight for sorting.
func ClockMinutes(value string) (int, bool) {
	parsed, ok := ParseClock(value)
	if !ok {
		return 0, false
	}
	return parsed.Hour()*60 + parsed.Minute(), true
}

// NormalizeDate reduces a calendar date or ISO datetime to "YYYY-MM-DD".
func NormalizeDate(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	if parsed, err := time.Parse(DateLayout, trimmed); err == nil {
		return parsed.Format(DateLayout), true
	}
	for _, layout := range dateTimeLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.Format(DateLayout), true
		}
	}
	return "", false
}

func optionalClock(value string) string {
	parsed, ok := ParseClock(value)
	if !ok {
		return ""
	}
	return parsed.Format(clockLayout)
}
