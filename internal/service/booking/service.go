package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/scheduler-api/internal/model"
	"github.com/clinicore/scheduler-api/internal/repository"
	"github.com/clinicore/scheduler-api/internal/service/availability"
	"github.com/clinicore/scheduler-api/pkg/metrics"
)

// Service is the booking conflict guard plus the appointment lifecycle.
// It is the only writer of the appointment ledger: every create, update
// and reschedule passes through Reserve immediately before persisting.
type Service struct {
	repo    repository.AppointmentRepository
	engine  *availability.Service
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repo repository.AppointmentRepository, engine *availability.Service, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		engine:  engine,
		metrics: m,
		now:     time.Now,
	}
}

// WithClock overrides the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Reserve re-validates the requested slot with a fresh availability check
// and an independent exact-slot ledger re-check, excluding excludeID so a
// reschedule never conflicts with its own current booking. It never
// persists anything; a nil return tells the caller to proceed with the
// write. The partial unique index on (doctor_id, start_time) for active
// statuses remains the backstop against interleaved writers.
func (s *Service) Reserve(ctx context.Context, doctorID uuid.UUID, at time.Time, excludeID *uuid.UUID) error {
	if err := s.engine.CheckSlot(ctx, doctorID, at, excludeID); err != nil {
		return s.observeReserve(err)
	}

	occupied, err := s.repo.ExistsActiveAt(ctx, doctorID, at, excludeID)
	if err != nil {
		return s.observeReserve(fmt.Errorf("failed to re-check slot occupancy: %w", err))
	}
	if occupied {
		return s.observeReserve(model.NewConflict(model.ConflictSlotOccupied))
	}

	return s.observeReserve(nil)
}

func (s *Service) observeReserve(err error) error {
	if s.metrics == nil {
		return err
	}
	outcome := "ok"
	var conflict *model.Conflict
	switch {
	case errors.As(err, &conflict):
		outcome = string(conflict.Reason)
	case err != nil:
		outcome = "error"
	}
	s.metrics.BookingAttempts.WithLabelValues(outcome).Inc()
	return err
}

// CreateAppointment books a new pending appointment after the guard
// admits the slot.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	start := req.StartTime.Truncate(time.Minute)

	if err := s.Reserve(ctx, req.DoctorID, start, nil); err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		Base:      model.Base{ID: uuid.New()},
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		StartTime: start,
		Status:    model.AppointmentStatusPending,
		Notes:     req.Notes,
	}

	if err := s.repo.Create(ctx, apt, s.event(model.EventAppointmentCreated, apt)); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			// Lost the race to a concurrent booking; the unique index
			// caught what the pre-check could not.
			return nil, model.NewConflict(model.ConflictSlotOccupied)
		}
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	return apt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return apt, nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// ConfirmAppointment moves a pending appointment to confirmed.
func (s *Service) ConfirmAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !apt.Status.CanTransitionTo(model.AppointmentStatusConfirmed) {
		return nil, fmt.Errorf("cannot confirm appointment in status %s", apt.Status)
	}

	apt.Status = model.AppointmentStatusConfirmed
	if err := s.repo.Update(ctx, apt, s.event(model.EventAppointmentConfirmed, apt)); err != nil {
		return nil, fmt.Errorf("failed to confirm appointment: %w", err)
	}

	return apt, nil
}

// CancelAppointment cancels a pending or confirmed appointment. The freed
// slot becomes bookable immediately since availability ignores cancelled
// records.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID, reason string) (*model.Appointment, error) {
	if reason == "" {
		return nil, fmt.Errorf("cancellation reason is required")
	}

	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !apt.Status.CanTransitionTo(model.AppointmentStatusCancelled) {
		return nil, fmt.Errorf("cannot cancel appointment in status %s", apt.Status)
	}

	apt.Status = model.AppointmentStatusCancelled
	apt.CancelReason = &reason
	if err := s.repo.Update(ctx, apt, s.event(model.EventAppointmentCancelled, apt)); err != nil {
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}

	return apt, nil
}

// CompleteAppointment marks a confirmed appointment completed once its
// start time has passed.
func (s *Service) CompleteAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !apt.Status.CanTransitionTo(model.AppointmentStatusCompleted) {
		return nil, fmt.Errorf("cannot complete appointment in status %s", apt.Status)
	}
	if s.now().Before(apt.StartTime) {
		return nil, fmt.Errorf("cannot complete an appointment before it starts")
	}

	apt.Status = model.AppointmentStatusCompleted
	if err := s.repo.Update(ctx, apt, s.event(model.EventAppointmentCompleted, apt)); err != nil {
		return nil, fmt.Errorf("failed to complete appointment: %w", err)
	}

	return apt, nil
}

// RescheduleAppointment moves an active appointment to a new slot. The
// guard runs against the new time with the appointment's own occupancy
// excluded, so rebooking the current slot succeeds.
func (s *Service) RescheduleAppointment(ctx context.Context, id uuid.UUID, newStart time.Time) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if apt.Status.IsTerminal() {
		return nil, fmt.Errorf("cannot reschedule appointment in status %s", apt.Status)
	}

	newStart = newStart.Truncate(time.Minute)
	if err := s.Reserve(ctx, apt.DoctorID, newStart, &apt.ID); err != nil {
		return nil, err
	}

	apt.StartTime = newStart
	if err := s.repo.Update(ctx, apt, s.event(model.EventAppointmentRescheduled, apt)); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, model.NewConflict(model.ConflictSlotOccupied)
		}
		return nil, fmt.Errorf("failed to reschedule appointment: %w", err)
	}

	return apt, nil
}

// event builds the outbox record handed to the repository, which persists
// it in the same transaction as the appointment write.
func (s *Service) event(eventType string, apt *model.Appointment) *model.OutboxEvent {
	payload, err := json.Marshal(apt)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal appointment event")
		return nil
	}
	return &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}
}
