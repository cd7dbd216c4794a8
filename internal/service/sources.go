package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lms-timetable/internal/domain"
	"lms-timetable/internal/repository"
)

type SlotCatalogSource interface {
	ListTimeSlots(ctx context.Context) ([]domain.TimeSlotDefinition, error)
}

type OccurrenceSource interface {
	ListWeekOccurrences(ctx context.Context, studentID uuid.UUID, weekStart time.Time) (domain.WeeklyOccurrences, error)
}

// PostgresTimetableStore serves both feeds from the local read model.
type PostgresTimetableStore struct {
	txManager repository.TxManager
}

func NewPostgresTimetableStore(txManager repository.TxManager) *PostgresTimetableStore {
	return &PostgresTimetableStore{txManager: txManager}
}

func (s *PostgresTimetableStore) ListTimeSlots(ctx context.Context) ([]domain.TimeSlotDefinition, error) {
	var slots []domain.TimeSlotDefinition
	err := s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		var err error
		slots, err = repos.TimeSlots.ListAll(ctx)
		return err
	})
	return slots, err
}

func (s *PostgresTimetableStore) ListWeekOccurrences(ctx context.Context, studentID uuid.UUID, weekStart time.Time) (domain.WeeklyOccurrences, error) {
	var week domain.WeeklyOccurrences
	err := s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		var err error
		week, err = repos.Occurrences.ListByStudentWeek(ctx, studentID, weekStart)
		return err
	})
	return week, err
}
