package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"lms-timetable/internal/domain"
	"lms-timetable/internal/timetable"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")).
			MarginBottom(1)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF6B6B")).
			Padding(0, 1)
	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#444444"))
	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
)

func (m *Model) View() string {
	sections := []string{m.renderTitle()}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Could not load timetable: %v\nPress r to retry.", m.err)))
	}
	if m.loading {
		sections = append(sections, m.spinner.View()+" Loading timetable...")
	}
	if m.timetable != nil {
		for _, warning := range m.timetable.Warnings {
			sections = append(sections, warningStyle.Render("! "+warning))
		}
		sections = append(sections, m.renderGrid(*m.timetable))
	}
	if detail := m.renderDetail(); detail != "" {
		sections = append(sections, detail)
	}

	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderTitle() string {
	weekEnd := timetable.WeekEnd(m.weekStart)
	return titleStyle.Render(fmt.Sprintf("Timetable · %s to %s",
		m.weekStart.Format(timetable.DateLayout),
		weekEnd.Format(timetable.DateLayout),
	))
}

func (m *Model) renderGrid(week domain.WeekTimetable) string {
	if len(week.Rows) == 0 {
		return mutedStyle.Render("No classes scheduled this week.")
	}

	days := week.Days
	if len(days) == 0 {
		days = domain.Weekdays
	}

	headers := make([]string, 0, len(days)+1)
	headers = append(headers, "Slot")
	for _, day := range days {
		headers = append(headers, m.dayHeader(day))
	}

	selectedID := ""
	if selected, ok := m.selectedOccurrence(); ok {
		selectedID = selected.OccurrenceID
	}

	rows := make([][]string, 0, len(week.Rows))
	for _, row := range week.Rows {
		cells := make([]string, 0, len(days)+1)
		cells = append(cells, row.Label+"\n"+mutedStyle.Render(row.TimeRange))
		for _, day := range days {
			cells = append(cells, renderCell(row.Cells[day], selectedID))
		}
		rows = append(rows, cells)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		BorderRow(true).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return cellStyle
		})
	if m.width > 0 {
		t = t.Width(m.width)
	}
	return t.Render()
}

// dayHeader abbreviates canonical day names and adds their date. Names the
// client does not recognize are shown as sent.
func (m *Model) dayHeader(day string) string {
	canonical, ok := domain.CanonicalDay(day)
	if !ok {
		return day
	}
	header := canonical[:3]
	if date, ok := timetable.DayDate(m.weekStart, canonical); ok {
		header += " " + date.Format("02/01")
	}
	return header
}

func renderCell(occurrences []domain.ClassOccurrence, selectedID string) string {
	if len(occurrences) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(occurrences))
	for _, occurrence := range occurrences {
		course := domain.DisplayOrNotAvailable(occurrence.CourseCode)
		if selectedID != "" && occurrence.OccurrenceID == selectedID {
			course = "▸ " + course
		}
		lines := []string{
			course,
			domain.DisplayOrNotAvailable(occurrence.LocationOrNote),
		}
		if label := attendanceLabel(occurrence.Attendance); label != "" {
			lines = append(lines, label)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func (m *Model) renderDetail() string {
	switch {
	case m.detailID == "":
		return ""
	case m.detailLoading:
		return detailStyle.Render(m.spinner.View() + " Loading class details...")
	case m.detailErr != nil:
		return errorStyle.Render(fmt.Sprintf("Could not load class details: %v", m.detailErr))
	case m.detail == nil:
		return ""
	}

	o := m.detail
	date := o.Date
	if o.DateDefaulted {
		date += " (estimated)"
	}
	attendance := attendanceLabel(o.Attendance)
	if attendance == "" {
		attendance = string(domain.AttendanceUnknown)
	}
	lines := []string{
		titleStyle.UnsetMarginBottom().Render(domain.DisplayOrNotAvailable(o.CourseCode)),
		"Course:     " + domain.DisplayOrNotAvailable(o.CourseName),
		"Instructor: " + domain.DisplayOrNotAvailable(o.InstructorName),
		"Location:   " + domain.DisplayOrNotAvailable(o.LocationOrNote),
		"Day:        " + o.DayOfWeek + " " + date,
		"Time:       " + timetable.FormatClock(o.StartTime) + " - " + timetable.FormatClock(o.EndTime),
		"Attendance: " + attendance,
	}
	return detailStyle.Render(strings.Join(lines, "\n"))
}

func attendanceLabel(state domain.AttendanceState) string {
	switch state {
	case domain.AttendanceAttended:
		return "✓ attended"
	case domain.AttendanceAbsent:
		return "✗ absent"
	case domain.AttendanceNotRecorded:
		return "not recorded"
	default:
		return ""
	}
}
