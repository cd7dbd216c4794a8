package domain

import "strings"

const NotAvailable = "N/A"

var Weekdays = []string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// CanonicalDay returns the canonical spelling of a day name. Matching ignores
// case and surrounding whitespace; anything else is rejected.
func CanonicalDay(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	for _, day := range Weekdays {
		if strings.EqualFold(day, trimmed) {
			return day, true
		}
	}
	return "", false
}

// DayOffset returns the zero-based position of a canonical day in a
// Monday-first week.
func DayOffset(day string) (int, bool) {
	for idx, candidate := range Weekdays {
		if candidate == day {
			return idx, true
		}
	}
	return 0, false
}

// ClassOccurrence is one scheduled meeting of one class on one date, in the
// single shape every feed normalizes to.
type ClassOccurrence struct {
	OccurrenceID   string          `json:"occurrenceId"`
	ClassID        string          `json:"classId,omitempty"`
	DayOfWeek      string          `json:"dayOfWeek"`
	Date           string          `json:"date"`
	DateDefaulted  bool            `json:"dateDefaulted,omitempty"`
	TimeSlotID     string          `json:"timeSlotId,omitempty"`
	TimeSlotLabel  string          `json:"timeSlotName,omitempty"`
	StartTime      string          `json:"startTime,omitempty"`
	EndTime        string          `json:"endTime,omitempty"`
	CourseCode     string          `json:"courseCode"`
	CourseName     string          `json:"courseName,omitempty"`
	InstructorName string          `json:"instructorName,omitempty"`
	LocationOrNote string          `json:"locationOrNote,omitempty"`
	Attendance     AttendanceState `json:"attendanceState"`
}

// DisplayOrNotAvailable returns value, or the placeholder when it is blank.
func DisplayOrNotAvailable(value string) string {
	if strings.TrimSpace(value) == "" {
		return NotAvailable
	}
	return value
}

// DayBucket holds the occurrences the feed grouped under one day, together
// with that day's own date when the feed knows it.
type DayBucket struct {
	Day         string
	Date        string
	Occurrences []ClassOccurrence
}

// WeeklyOccurrences is keyed by the day name the feed used, which is not
// guaranteed to be canonical.
type WeeklyOccurrences map[string]DayBucket
