package repository

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms-timetable/internal/domain"
)

func TestTimeSlotPostgresRepositoryListAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable.time_slots")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "start_time", "end_time"}).
			AddRow("s1", "Slot 1", "07:30:00", "09:20:00").
			AddRow("s2", "Slot 2", "09:30:00", "11:20:00"))

	slots, err := NewTimeSlotPostgresRepository(db).ListAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.TimeSlotDefinition{
		{ID: "s1", Label: "Slot 1", StartTime: "07:30:00", EndTime: "09:20:00"},
		{ID: "s2", Label: "Slot 2", StartTime: "09:30:00", EndTime: "11:20:00"},
	}, slots)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOccurrencePostgresRepositoryListByStudentWeek(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	studentID := uuid.New()
	weekStart := time.Date(2025, time.September, 22, 0, 0, 0, 0, time.UTC)
	columns := []string{
		"id", "class_id", "day_of_week", "occurrence_date", "time_slot_id", "slot_name",
		"start_time", "end_time", "course_code", "course_name", "teacher_name", "location",
		"is_present", "has_attendance",
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable.class_occurrences o")).
		WithArgs(studentID, "2025-09-22").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("o1", "c1", "Tuesday", "2025-09-23", "s1", "Slot 1", "07:30:00", "09:20:00", "HCM202", "Ho Chi Minh Ideology", "T. Nguyen", "Room 204", true, true).
			AddRow("o2", "c2", "Tuesday", nil, "", "Evening", "", "", "SWE201", "", "", "", nil, true).
			AddRow("o3", "c3", "Sundayy", nil, "", "", "", "", "MAE101", "", "", "", nil, false))

	week, err := NewOccurrencePostgresRepository(db).ListByStudentWeek(context.Background(), studentID, weekStart)

	require.NoError(t, err)
	require.Len(t, week, 2)

	tuesday := week["Tuesday"]
	assert.Equal(t, "2025-09-23", tuesday.Date)
	require.Len(t, tuesday.Occurrences, 2)
	assert.Equal(t, domain.AttendanceAttended, tuesday.Occurrences[0].Attendance)
	assert.Equal(t, "Room 204", tuesday.Occurrences[0].LocationOrNote)
	assert.Equal(t, "", tuesday.Occurrences[1].Date)
	assert.Equal(t, domain.AttendanceNotRecorded, tuesday.Occurrences[1].Attendance)

	typo := week["Sundayy"]
	assert.Equal(t, "", typo.Date)
	require.Len(t, typo.Occurrences, 1)
	assert.Equal(t, domain.AttendanceUnknown, typo.Occurrences[0].Attendance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTxManagerRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable.time_slots")).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = NewPostgresTxManager(db).WithTx(context.Background(), func(ctx context.Context, repos TxRepositories) error {
		_, err := repos.TimeSlots.ListAll(ctx)
		return err
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTxManagerCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable.time_slots")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "start_time", "end_time"}))
	mock.ExpectCommit()

	err = NewPostgresTxManager(db).WithTx(context.Background(), func(ctx context.Context, repos TxRepositories) error {
		_, err := repos.TimeSlots.ListAll(ctx)
		return err
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.yaml")
	content := `time_slots:
  - id: s2
    name: Slot 2
    start_time: "09:30"
    end_time: "11:20"
  - id: s1
    name: Slot 1
    start_time: "07:30"
    end_time: "09:20"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	slots, err := NewSlotCatalogFile(path).ListTimeSlots(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.TimeSlotDefinition{
		{ID: "s2", Label: "Slot 2", StartTime: "09:30", EndTime: "11:20"},
		{ID: "s1", Label: "Slot 1", StartTime: "07:30", EndTime: "09:20"},
	}, slots)
}

func TestSlotCatalogFileMissing(t *testing.T) {
	_, err := NewSlotCatalogFile(filepath.Join(t.TempDir(), "absent.yaml")).ListTimeSlots(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
