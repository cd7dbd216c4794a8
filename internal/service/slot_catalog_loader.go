package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"lms-timetable/internal/domain"
	"lms-timetable/internal/metrics"
	"lms-timetable/internal/timetable"
)

// SlotCatalogLoader loads the institution's slot catalog sorted by start time
// and caches successful loads for ttl.
type SlotCatalogLoader struct {
	source  SlotCatalogSource
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
	clock   func() time.Time

	mu       sync.Mutex
	cached   []domain.TimeSlotDefinition
	loadedAt time.Time
	hasCache bool
}

func NewSlotCatalogLoader(source SlotCatalogSource, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *SlotCatalogLoader {
	return &SlotCatalogLoader{
		source:  source,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
		clock:   time.Now,
	}
}

// Load returns the catalog. On failure it returns an empty catalog together
// with the error; callers degrade to ad-hoc rows and surface the error as a
// warning.
func (l *SlotCatalogLoader) Load(ctx context.Context) ([]domain.TimeSlotDefinition, error) {
	if slots, ok := l.fresh(); ok {
		return slots, nil
	}
	return l.Refresh(ctx)
}

// Refresh bypasses the cache.
func (l *SlotCatalogLoader) Refresh(ctx context.Context) ([]domain.TimeSlotDefinition, error) {
	slots, err := l.source.ListTimeSlots(ctx)
	if err != nil {
		l.metrics.CatalogLoadFailures.Inc()
		l.logger.Warn("slot catalog unavailable, continuing with empty catalog", zap.Error(err))
		return []domain.TimeSlotDefinition{}, fmt.Errorf("load slot catalog: %w", err)
	}

	sorted := SortSlots(slots)

	l.mu.Lock()
	l.cached = sorted
	l.loadedAt = l.clock()
	l.hasCache = true
	l.mu.Unlock()

	l.metrics.CatalogSlots.Set(float64(len(sorted)))
	l.logger.Debug("slot catalog loaded", zap.Int("slots", len(sorted)))
	return cloneSlots(sorted), nil
}

func (l *SlotCatalogLoader) fresh() ([]domain.TimeSlotDefinition, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.hasCache || l.ttl <= 0 {
		return nil, false
	}
	if l.clock().Sub(l.loadedAt) >= l.ttl {
		return nil, false
	}
	return cloneSlots(l.cached), true
}

// SortSlots returns a copy ordered by start time. Slots whose start time
// cannot be parsed keep their relative order after all others.
func SortSlots(slots []domain.TimeSlotDefinition) []domain.TimeSlotDefinition {
	sorted := cloneSlots(slots)
	sort.SliceStable(sorted, func(i, j int) bool {
		left, leftOK := timetable.ClockMinutes(sorted[i].StartTime)
		right, rightOK := timetable.ClockMinutes(sorted[j].StartTime)
		if leftOK != rightOK {
			return leftOK
		}
		return leftOK && left < right
	})
	return sorted
}

func cloneSlots(slots []domain.TimeSlotDefinition) []domain.TimeSlotDefinition {
	cloned := make([]domain.TimeSlotDefinition, len(slots))
	copy(cloned, slots)
	return cloned
}
