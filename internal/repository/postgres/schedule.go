package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/scheduler-api/internal/model"
	"github.com/clinicore/scheduler-api/internal/repository"
)

func (r *scheduleRepository) GetEntry(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday) (*model.WeeklyScheduleEntry, error) {
	query := `
		SELECT id, doctor_id, weekday, is_available,
			   work_start, work_end, break_start, break_end,
			   created_at, updated_at
		FROM weekly_schedules
		WHERE doctor_id = $1 AND weekday = $2
	`
	var entry model.WeeklyScheduleEntry
	err := r.db.GetContext(ctx, &entry, query, doctorID, int(weekday))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule entry: %w", err)
	}
	return &entry, nil
}

func (r *scheduleRepository) Upsert(ctx context.Context, entry *model.WeeklyScheduleEntry) error {
	query := `
		INSERT INTO weekly_schedules (
			id, doctor_id, weekday, is_available,
			work_start, work_end, break_start, break_end,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (doctor_id, weekday) DO UPDATE SET
			is_available = EXCLUDED.is_available,
			work_start = EXCLUDED.work_start,
			work_end = EXCLUDED.work_end,
			break_start = EXCLUDED.break_start,
			break_end = EXCLUDED.break_end,
			updated_at = EXCLUDED.updated_at
	`
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
		entry.CreatedAt = time.Now()
	}
	entry.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.DoctorID,
		int(entry.Weekday),
		entry.IsAvailable,
		entry.WorkStart,
		entry.WorkEnd,
		entry.BreakStart,
		entry.BreakEnd,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert schedule entry: %w", err)
	}
	return nil
}

func (r *scheduleRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.WeeklyScheduleEntry, error) {
	query := `
		SELECT id, doctor_id, weekday, is_available,
			   work_start, work_end, break_start, break_end,
			   created_at, updated_at
		FROM weekly_schedules
		WHERE doctor_id = $1
		ORDER BY weekday ASC
	`
	var entries []*model.WeeklyScheduleEntry
	err := r.db.SelectContext(ctx, &entries, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule entries: %w", err)
	}
	return entries, nil
}

func (r *scheduleRepository) Delete(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday) error {
	query := `DELETE FROM weekly_schedules WHERE doctor_id = $1 AND weekday = $2`
	result, err := r.db.ExecContext(ctx, query, doctorID, int(weekday))
	if err != nil {
		return fmt.Errorf("failed to delete schedule entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}
