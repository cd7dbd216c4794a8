package repository

import (
	"context"

	"lms-timetable/internal/domain"
)

type TimeSlotRepository interface {
	ListAll(ctx context.Context) ([]domain.TimeSlotDefinition, error)
}

type TimeSlotPostgresRepository struct {
	execer Execer
}

func NewTimeSlotPostgresRepository(execer Execer) *TimeSlotPostgresRepository {
	return &TimeSlotPostgresRepository{execer: execer}
}

func (r *TimeSlotPostgresRepository) ListAll(ctx context.Context) ([]domain.TimeSlotDefinition, error) {
	const query = `
SELECT id::text, name, to_char(start_time, 'HH24:MI:SS'), to_char(end_time, 'HH24:MI:SS')
FROM timetable.time_slots
ORDER BY start_time ASC, name ASC
`

	rows, err := r.execer.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []domain.TimeSlotDefinition
	for rows.Next() {
		var slot domain.TimeSlotDefinition
		if err := rows.Scan(
			&slot.ID,
			&slot.Label,
			&slot.StartTime,
			&slot.EndTime,
		); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return slots, nil
}
