package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lms-timetable/internal/domain"
	"lms-timetable/internal/metrics"
	"lms-timetable/internal/timetable"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrUpstream     = errors.New("upstream unavailable")
)

const WarningCatalogUnavailable = "slot catalog unavailable; showing unscheduled slots only"

type CatalogLoader interface {
	Load(ctx context.Context) ([]domain.TimeSlotDefinition, error)
}

type TimetableService struct {
	catalog     CatalogLoader
	occurrences OccurrenceSource
	logger      *zap.Logger
	metrics     *metrics.Metrics
	location    *time.Location
	clock       func() time.Time
}

func NewTimetableService(
	catalog CatalogLoader,
	occurrences OccurrenceSource,
	logger *zap.Logger,
	m *metrics.Metrics,
	location *time.Location,
) *TimetableService {
	if location == nil {
		location = time.Local
	}
	return &TimetableService{
		catalog:     catalog,
		occurrences: occurrences,
		logger:      logger,
		metrics:     m,
		location:    location,
		clock:       time.Now,
	}
}

func (s *TimetableService) Now() time.Time {
	return s.clock().In(s.location)
}

func (s *TimetableService) Location() *time.Location {
	return s.location
}

func (s *TimetableService) TimeSlots(ctx context.Context) ([]domain.TimeSlotDefinition, error) {
	slots, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return slots, nil
}

// Week assembles the timetable of the Monday-based week containing anchor.
// The catalog and the occurrences are fetched concurrently; a catalog failure
// only adds a warning, an occurrence failure fails the call.
func (s *TimetableService) Week(ctx context.Context, studentID uuid.UUID, anchor time.Time) (domain.WeekTimetable, error) {
	if studentID == uuid.Nil {
		return domain.WeekTimetable{}, ErrInvalidInput
	}
	weekStart := timetable.WeekStart(anchor.In(s.location))

	var (
		catalog    []domain.TimeSlotDefinition
		catalogErr error
		week       domain.WeeklyOccurrences
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		catalog, catalogErr = s.catalog.Load(groupCtx)
		return nil
	})
	group.Go(func() error {
		var err error
		week, err = s.occurrences.ListWeekOccurrences(groupCtx, studentID, weekStart)
		return err
	})
	if err := group.Wait(); err != nil {
		return domain.WeekTimetable{}, s.upstreamError(err)
	}

	s.reportUnplaceable(studentID, weekStart, week)

	assembler := timetable.NewAssembler(s.Now)
	rows := assembler.Assemble(catalog, week)

	s.metrics.Assemblies.Inc()
	for _, row := range rows {
		if row.AdHoc {
			s.metrics.AdHocRows.Inc()
		}
	}

	result := domain.WeekTimetable{
		WeekStart: weekStart.Format(timetable.DateLayout),
		WeekEnd:   timetable.WeekEnd(weekStart).Format(timetable.DateLayout),
		Days:      append([]string(nil), domain.Weekdays...),
		Rows:      rows,
	}
	if catalogErr != nil {
		result.Warnings = append(result.Warnings, WarningCatalogUnavailable)
	}
	return result, nil
}

// Occurrence returns one assembled occurrence of the week containing anchor,
// with the same normalization and attendance mapping as the weekly grid.
func (s *TimetableService) Occurrence(ctx context.Context, studentID uuid.UUID, anchor time.Time, occurrenceID string) (domain.ClassOccurrence, error) {
	if occurrenceID == "" {
		return domain.ClassOccurrence{}, ErrInvalidInput
	}

	week, err := s.Week(ctx, studentID, anchor)
	if err != nil {
		return domain.ClassOccurrence{}, err
	}

	for _, row := range week.Rows {
		for _, day := range week.Days {
			for _, occurrence := range row.Cells[day] {
				if occurrence.OccurrenceID == occurrenceID {
					return occurrence, nil
				}
			}
		}
	}
	return domain.ClassOccurrence{}, ErrNotFound
}

func (s *TimetableService) reportUnplaceable(studentID uuid.UUID, weekStart time.Time, week domain.WeeklyOccurrences) {
	for _, occurrence := range timetable.Unplaceable(week) {
		s.metrics.OccurrencesDropped.WithLabelValues(metrics.DropReasonUnknownDay).Inc()
		s.logger.Warn("dropping occurrence with unrecognized day",
			zap.String("student_id", studentID.String()),
			zap.String("week_start", weekStart.Format(timetable.DateLayout)),
			zap.String("day_of_week", occurrence.DayOfWeek),
			zap.String("occurrence_id", occurrence.OccurrenceID),
			zap.String("course_code", occurrence.CourseCode),
		)
	}
}

func (s *TimetableService) upstreamError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidInput):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
}
