package migrations

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUpSkipsAppliedMigrations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + migrationsTable)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	for _, name := range []string{"0001_timetable_schema.sql", "0002_attendance_records.sql"} {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WithArgs(name).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	}

	require.NoError(t, Up(context.Background(), db, zap.NewNop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpAppliesPendingMigration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + migrationsTable)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("0001_timetable_schema.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("0002_attendance_records.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE timetable.attendance_records")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO " + migrationsTable)).
		WithArgs("0002_attendance_records.sql").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, Up(context.Background(), db, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpRequiresDB(t *testing.T) {
	assert.Error(t, Up(context.Background(), nil, nil))
}

func TestIsIgnorableMigrationError(t *testing.T) {
	assert.True(t, isIgnorableMigrationError(fmt.Errorf("apply: %w", &pgconn.PgError{Code: "42P07"})))
	assert.False(t, isIgnorableMigrationError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isIgnorableMigrationError(assert.AnError))
}
