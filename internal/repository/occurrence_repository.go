package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"lms-timetable/internal/domain"
	"lms-timetable/internal/timetable"
)

type OccurrenceRepository interface {
	ListByStudentWeek(ctx context.Context, studentID uuid.UUID, weekStart time.Time) (domain.WeeklyOccurrences, error)
}

type OccurrencePostgresRepository struct {
	execer Execer
}

func NewOccurrencePostgresRepository(execer Execer) *OccurrencePostgresRepository {
	return &OccurrencePostgresRepository{execer: execer}
}

// ListByStudentWeek returns the occurrences of every class the student is
// enrolled in for the week starting at weekStart, grouped by the stored day
// name. Buckets of canonical days carry their calendar date.
func (r *OccurrencePostgresRepository) ListByStudentWeek(ctx context.Context, studentID uuid.UUID, weekStart time.Time) (domain.WeeklyOccurrences, error) {
	const query = `
SELECT
	o.id::text,
	c.id::text,
	o.day_of_week,
	to_char(o.occurrence_date, 'YYYY-MM-DD'),
	coalesce(o.time_slot_id::text, ''),
	coalesce(ts.name, o.slot_label, ''),
	coalesce(to_char(o.start_time, 'HH24:MI:SS'), ''),
	coalesce(to_char(o.end_time, 'HH24:MI:SS'), ''),
	c.course_code,
	coalesce(c.course_name, ''),
	coalesce(c.teacher_name, ''),
	coalesce(o.location, o.note, ''),
	a.is_present,
	a.occurrence_id IS NOT NULL
FROM timetable.class_occurrences o
JOIN timetable.classes c ON c.id = o.class_id
JOIN timetable.class_enrollments e ON e.class_id = c.id AND e.student_id = $1
LEFT JOIN timetable.time_slots ts ON ts.id = o.time_slot_id
LEFT JOIN timetable.attendance_records a ON a.occurrence_id = o.id AND a.student_id = $1
WHERE o.week_start = $2
ORDER BY o.occurrence_date ASC NULLS LAST, o.start_time ASC NULLS LAST, o.id ASC
`

	rows, err := r.execer.QueryContext(ctx, query, studentID, weekStart.Format(timetable.DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	week := make(domain.WeeklyOccurrences)
	for rows.Next() {
		var occurrence domain.ClassOccurrence
		var date sql.NullString
		var isPresent sql.NullBool
		var hasAttendance bool
		if err := rows.Scan(
			&occurrence.OccurrenceID,
			&occurrence.ClassID,
			&occurrence.DayOfWeek,
			&date,
			&occurrence.TimeSlotID,
			&occurrence.TimeSlotLabel,
			&occurrence.StartTime,
			&occurrence.EndTime,
			&occurrence.CourseCode,
			&occurrence.CourseName,
			&occurrence.InstructorName,
			&occurrence.LocationOrNote,
			&isPresent,
			&hasAttendance,
		); err != nil {
			return nil, err
		}
		if date.Valid {
			occurrence.Date = date.String
		}
		var present *bool
		if isPresent.Valid {
			present = &isPresent.Bool
		}
		occurrence.Attendance = domain.DeriveAttendance(present, hasAttendance)

		bucket, ok := week[occurrence.DayOfWeek]
		if !ok {
			bucket = newDayBucket(occurrence.DayOfWeek, weekStart)
		}
		bucket.Occurrences = append(bucket.Occurrences, occurrence)
		week[occurrence.DayOfWeek] = bucket
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return week, nil
}

func newDayBucket(day string, weekStart time.Time) domain.DayBucket {
	bucket := domain.DayBucket{Day: day}
	if canonical, ok := domain.CanonicalDay(day); ok {
		if date, ok := timetable.DayDate(weekStart, canonical); ok {
			bucket.Date = date.Format(timetable.DateLayout)
		}
	}
	return bucket
}
