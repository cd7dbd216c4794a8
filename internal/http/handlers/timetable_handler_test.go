package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lms-timetable/internal/domain"
	"lms-timetable/internal/http/middleware"
	"lms-timetable/internal/metrics"
	"lms-timetable/internal/service"
)

const testSecret = "handler-secret"

type stubCatalog struct {
	slots []domain.TimeSlotDefinition
	err   error
}

func (s stubCatalog) ListTimeSlots(ctx context.Context) ([]domain.TimeSlotDefinition, error) {
	return s.slots, s.err
}

type stubOccurrences struct {
	week         domain.WeeklyOccurrences
	err          error
	gotWeekStart time.Time
}

func (s *stubOccurrences) ListWeekOccurrences(ctx context.Context, studentID uuid.UUID, weekStart time.Time) (domain.WeeklyOccurrences, error) {
	s.gotWeekStart = weekStart
	return s.week, s.err
}

func setup(t *testing.T, catalog stubCatalog, occurrences *stubOccurrences) *echo.Echo {
	t.Helper()
	m := metrics.New(nil)
	loader := service.NewSlotCatalogLoader(catalog, 0, zap.NewNop(), m)
	svc := service.NewTimetableService(loader, occurrences, zap.NewNop(), m, time.UTC)

	e := echo.New()
	e.Validator = NewRequestValidator()
	NewTimetableHandler(svc).Register(e.Group("/api"), middleware.JWTAuth(testSecret))
	return e
}

func bearer(t *testing.T, studentID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   studentID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func newRequest(method, path, authorization string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	return req, httptest.NewRecorder()
}

func scenarioCatalog() stubCatalog {
	return stubCatalog{slots: []domain.TimeSlotDefinition{
		{ID: "s1", Label: "Slot 1", StartTime: "07:30", EndTime: "09:20"},
	}}
}

func scenarioWeek() domain.WeeklyOccurrences {
	return domain.WeeklyOccurrences{
		"Tuesday": {
			Day:  "Tuesday",
			Date: "2025-09-23",
			Occurrences: []domain.ClassOccurrence{
				{OccurrenceID: "occ-1", DayOfWeek: "Tuesday", TimeSlotLabel: "Slot 1", CourseCode: "HCM202", Date: "2025-09-23"},
			},
		},
	}
}

func TestGetWeekTimetable(t *testing.T) {
	occurrences := &stubOccurrences{week: scenarioWeek()}
	e := setup(t, scenarioCatalog(), occurrences)

	req, rec := newRequest(http.MethodGet, "/api/students/me/timetable?week=2025-09-24", bearer(t, uuid.New()))
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body domain.WeekTimetable
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2025-09-22", body.WeekStart)
	assert.Equal(t, "2025-09-22", occurrences.gotWeekStart.Format("2006-01-02"))
	require.Len(t, body.Rows, 1)
	assert.Equal(t, "07:30 - 09:20", body.Rows[0].TimeRange)
	require.Len(t, body.Rows[0].Cells["Tuesday"], 1)
	assert.Equal(t, "HCM202", body.Rows[0].Cells["Tuesday"][0].CourseCode)
	assert.Empty(t, body.Rows[0].Cells["Monday"])
}

func TestGetWeekTimetableCatalogWarning(t *testing.T) {
	e := setup(t, stubCatalog{err: errors.New("catalog down")}, &stubOccurrences{week: scenarioWeek()})

	req, rec := newRequest(http.MethodGet, "/api/students/me/timetable?week=2025-09-24", bearer(t, uuid.New()))
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body domain.WeekTimetable
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{service.WarningCatalogUnavailable}, body.Warnings)
	require.Len(t, body.Rows, 1)
	assert.True(t, body.Rows[0].AdHoc)
}

func TestGetWeekTimetableErrors(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		auth        bool
		occurrences *stubOccurrences
		wantCode    int
	}{
		{name: "no token", path: "/api/students/me/timetable", occurrences: &stubOccurrences{}, wantCode: http.StatusUnauthorized},
		{name: "bad week", path: "/api/students/me/timetable?week=24-09-2025", auth: true, occurrences: &stubOccurrences{}, wantCode: http.StatusBadRequest},
		{name: "impossible date", path: "/api/students/me/timetable?week=2025-02-30", auth: true, occurrences: &stubOccurrences{}, wantCode: http.StatusBadRequest},
		{name: "upstream failure", path: "/api/students/me/timetable", auth: true, occurrences: &stubOccurrences{err: errors.New("boom")}, wantCode: http.StatusBadGateway},
		{name: "student unknown upstream", path: "/api/students/me/timetable", auth: true, occurrences: &stubOccurrences{err: service.ErrNotFound}, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setup(t, scenarioCatalog(), tt.occurrences)
			authorization := ""
			if tt.auth {
				authorization = bearer(t, uuid.New())
			}
			req, rec := newRequest(http.MethodGet, tt.path, authorization)
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestGetOccurrence(t *testing.T) {
	e := setup(t, scenarioCatalog(), &stubOccurrences{week: scenarioWeek()})

	req, rec := newRequest(http.MethodGet, "/api/students/me/occurrences/occ-1?week=2025-09-23", bearer(t, uuid.New()))
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body domain.ClassOccurrence
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "HCM202", body.CourseCode)
	assert.Equal(t, domain.AttendanceUnknown, body.Attendance)

	req, rec = newRequest(http.MethodGet, "/api/students/me/occurrences/occ-404?week=2025-09-23", bearer(t, uuid.New()))
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTimeSlots(t *testing.T) {
	catalog := stubCatalog{slots: []domain.TimeSlotDefinition{
		{ID: "s2", Label: "Slot 2", StartTime: "09:30", EndTime: "11:20"},
		{ID: "s1", Label: "Slot 1", StartTime: "07:30", EndTime: "09:20"},
	}}
	e := setup(t, catalog, &stubOccurrences{})

	req, rec := newRequest(http.MethodGet, "/api/time-slots", "")
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body []domain.TimeSlotDefinition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "s1", body[0].ID)

	e = setup(t, stubCatalog{err: errors.New("down")}, &stubOccurrences{})
	req, rec = newRequest(http.MethodGet, "/api/time-slots", "")
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
