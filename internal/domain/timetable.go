package domain

// TimetableRow is one time slot row of the weekly grid. Cells always holds an
// entry for each of the seven Weekdays.
type TimetableRow struct {
	Key       string                       `json:"key"`
	Label     string                       `json:"label"`
	SlotID    string                       `json:"slotId,omitempty"`
	TimeRange string                       `json:"timeRange"`
	Index     int                          `json:"index"`
	AdHoc     bool                         `json:"adHoc"`
	Cells     map[string][]ClassOccurrence `json:"cells"`
}

// WeekTimetable is the assembled grid for one Monday-based week.
type WeekTimetable struct {
	WeekStart string         `json:"weekStart"`
	WeekEnd   string         `json:"weekEnd"`
	Days      []string       `json:"days"`
	Rows      []TimetableRow `json:"rows"`
	Warnings  []string       `json:"warnings,omitempty"`
}
