package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"lms-timetable/internal/domain"
	"lms-timetable/internal/http/handlers"
	"lms-timetable/internal/http/middleware"
	"lms-timetable/internal/metrics"
	"lms-timetable/internal/service"
)

type emptySource struct{}

func (emptySource) ListTimeSlots(ctx context.Context) ([]domain.TimeSlotDefinition, error) {
	return []domain.TimeSlotDefinition{}, nil
}

func (emptySource) ListWeekOccurrences(ctx context.Context, studentID uuid.UUID, weekStart time.Time) (domain.WeeklyOccurrences, error) {
	return domain.WeeklyOccurrences{}, nil
}

func newTestRouter(t *testing.T, logger *zap.Logger) http.Handler {
	t.Helper()
	m := metrics.New(nil)
	loader := service.NewSlotCatalogLoader(emptySource{}, 0, zap.NewNop(), m)
	svc := service.NewTimetableService(loader, emptySource{}, zap.NewNop(), m, time.UTC)
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	return NewRouter(handlers.NewTimetableHandler(svc), middleware.JWTAuth("secret"), metricsHandler, logger).Handler()
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t, zap.NewNop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
}

func TestRouterLogsRequests(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := newTestRouter(t, zap.New(core))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/time-slots", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/api/time-slots", entries[0].ContextMap()["uri"])
	assert.EqualValues(t, http.StatusOK, entries[0].ContextMap()["status"])
}

func TestRouterRequiresTokenForStudentRoutes(t *testing.T) {
	router := newTestRouter(t, zap.NewNop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/students/me/timetable", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
