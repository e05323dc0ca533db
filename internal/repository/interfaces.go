package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/scheduler-api/internal/model"
)

// Sentinel errors translated by the postgres layer so services never
// inspect driver-specific failures.
var (
	ErrNotFound = errors.New("record not found")
	// ErrSlotTaken surfaces the storage-level uniqueness backstop on
	// (doctor_id, start_time) for active appointments.
	ErrSlotTaken = errors.New("slot already taken")
)

// All repository interfaces in one file
type (
	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, page *model.Pagination) ([]*model.Doctor, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, page *model.Pagination) ([]*model.Patient, error)
	}

	// ScheduleRepository is the weekly-schedule store. The availability
	// engine only reads it; writes come from schedule management.
	ScheduleRepository interface {
		GetEntry(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday) (*model.WeeklyScheduleEntry, error)
		Upsert(ctx context.Context, entry *model.WeeklyScheduleEntry) error
		ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.WeeklyScheduleEntry, error)
		Delete(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday) error
	}

	// AppointmentRepository is the appointment ledger. Create and Update
	// persist the appointment and its lifecycle event (when non-nil) in
	// one transaction, so no booking commits without its event.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// ListActiveForDay returns pending/confirmed appointments whose
		// start falls on the given calendar date.
		ListActiveForDay(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error)
		// ExistsActiveAt reports whether another active appointment holds
		// exactly (doctorID, at), optionally excluding one record.
		ExistsActiveAt(ctx context.Context, doctorID uuid.UUID, at time.Time, excludeID *uuid.UUID) (bool, error)
	}

	// OutboxRepository is the worker-facing side of the outbox. Events are
	// inserted by the appointment repository inside the booking transaction.
	OutboxRepository interface {
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
