package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/clinicore/scheduler-api/internal/model"
	"github.com/clinicore/scheduler-api/internal/repository"
)

// Backed by a partial unique index:
//   CREATE UNIQUE INDEX appointments_doctor_slot_active
//   ON appointments (doctor_id, start_time)
//   WHERE status IN ('pending', 'confirmed');
// Violations are translated to repository.ErrSlotTaken so the booking
// service reports them as an occupied slot even under concurrent writes.

const pqUniqueViolation = "23505"

func translateSlotConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return repository.ErrSlotTaken
	}
	return err
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error {
	query := `
		INSERT INTO appointments (
			id, doctor_id, patient_id, start_time,
			status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	// The appointment row and its lifecycle event commit together.
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			appointment.ID,
			appointment.DoctorID,
			appointment.PatientID,
			appointment.StartTime,
			appointment.Status,
			appointment.Notes,
			appointment.CreatedAt,
			appointment.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if event != nil {
			return insertOutboxEvent(ctx, tx, event)
		}
		return nil
	})
	if err != nil {
		if translated := translateSlotConflict(err); translated == repository.ErrSlotTaken {
			return translated
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, start_time,
			   status, notes, cancel_reason, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error {
	query := `
		UPDATE appointments
		SET start_time = $1, status = $2, notes = $3, cancel_reason = $4, updated_at = $5
		WHERE id = $6
	`
	appointment.UpdatedAt = time.Now()

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			appointment.StartTime,
			appointment.Status,
			appointment.Notes,
			appointment.CancelReason,
			appointment.UpdatedAt,
			appointment.ID,
		)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return repository.ErrNotFound
		}

		if event != nil {
			return insertOutboxEvent(ctx, tx, event)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if translated := translateSlotConflict(err); translated == repository.ErrSlotTaken {
			return translated
		}
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, start_time,
			   status, notes, cancel_reason, created_at, updated_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.DoctorID != uuid.Nil {
		query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
		args = append(args, filters.DoctorID)
		argCount++
	}

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND start_time >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}

	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND start_time < $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY start_time ASC"

	if filters.Pagination.PageSize > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)
		args = append(args, filters.Pagination.PageSize, filters.Pagination.Offset())
	}

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListActiveForDay(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `
		SELECT id, doctor_id, patient_id, start_time,
			   status, notes, cancel_reason, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		AND start_time >= $2
		AND start_time < $3
		AND status IN ('pending', 'confirmed')
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, doctorID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list active appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ExistsActiveAt(ctx context.Context, doctorID uuid.UUID, at time.Time, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1
			AND start_time = $2
			AND status IN ('pending', 'confirmed')
	`
	args := []interface{}{doctorID, at}

	if excludeID != nil {
		query += " AND id != $3"
		args = append(args, *excludeID)
	}

	query += ")"

	var occupied bool
	err := r.db.GetContext(ctx, &occupied, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check slot occupancy: %w", err)
	}
	return occupied, nil
}
