package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/scheduler-api/internal/model"
	"github.com/clinicore/scheduler-api/internal/repository"
	"github.com/clinicore/scheduler-api/internal/service/availability"
)

// ErrInvalidSchedule wraps schedule validation failures so the transport
// layer can report them as client errors.
var ErrInvalidSchedule = errors.New("invalid schedule")

// Service manages doctors' weekly schedules. It owns all writes to the
// schedule store; the availability engine only ever reads it.
type Service struct {
	repo    repository.ScheduleRepository
	doctors repository.DoctorRepository
	engine  *availability.Service
}

func NewService(repo repository.ScheduleRepository, doctors repository.DoctorRepository, engine *availability.Service) *Service {
	return &Service{
		repo:    repo,
		doctors: doctors,
		engine:  engine,
	}
}

// UpsertEntry creates or replaces the schedule for one weekday and drops
// the engine's cached copy so bookings see the change immediately.
func (s *Service) UpsertEntry(ctx context.Context, doctorID uuid.UUID, req *model.UpsertScheduleRequest) (*model.WeeklyScheduleEntry, error) {
	if _, err := s.doctors.Get(ctx, doctorID); err != nil {
		return nil, err
	}

	entry := &model.WeeklyScheduleEntry{
		DoctorID:    doctorID,
		Weekday:     req.Weekday,
		IsAvailable: req.IsAvailable,
		WorkStart:   req.WorkStart,
		WorkEnd:     req.WorkEnd,
		BreakStart:  req.BreakStart,
		BreakEnd:    req.BreakEnd,
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, err
	}

	s.engine.InvalidateSchedule(doctorID)
	return entry, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.WeeklyScheduleEntry, error) {
	entries, err := s.repo.ListForDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule: %w", err)
	}
	return entries, nil
}

func (s *Service) DeleteEntry(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday) error {
	if weekday < time.Sunday || weekday > time.Saturday {
		return fmt.Errorf("invalid weekday %d", weekday)
	}
	if err := s.repo.Delete(ctx, doctorID, weekday); err != nil {
		return err
	}
	s.engine.InvalidateSchedule(doctorID)
	return nil
}
