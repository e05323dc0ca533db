package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/scheduler-api/internal/model"
	"github.com/clinicore/scheduler-api/internal/repository"
	"github.com/clinicore/scheduler-api/internal/service/availability"
	"github.com/clinicore/scheduler-api/pkg/timegrid"
)

type scheduleStore struct {
	entries map[time.Weekday]*model.WeeklyScheduleEntry
}

func (s *scheduleStore) GetEntry(_ context.Context, _ uuid.UUID, weekday time.Weekday) (*model.WeeklyScheduleEntry, error) {
	entry, ok := s.entries[weekday]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return entry, nil
}

func (s *scheduleStore) Upsert(_ context.Context, entry *model.WeeklyScheduleEntry) error {
	s.entries[entry.Weekday] = entry
	return nil
}

func (s *scheduleStore) ListForDoctor(_ context.Context, _ uuid.UUID) ([]*model.WeeklyScheduleEntry, error) {
	return nil, nil
}

func (s *scheduleStore) Delete(_ context.Context, _ uuid.UUID, weekday time.Weekday) error {
	delete(s.entries, weekday)
	return nil
}

// appointmentStore mimics the postgres ledger including the unique-index
// backstop on (doctor_id, start_time) for active rows. Events arrive
// through the same write call, so a rejected write records no event, the
// same all-or-nothing behavior the real repository gets from its
// transaction.
type appointmentStore struct {
	appointments  []*model.Appointment
	events        []string
	failNextWrite bool
}

func (s *appointmentStore) Create(_ context.Context, apt *model.Appointment, event *model.OutboxEvent) error {
	if s.failNextWrite {
		s.failNextWrite = false
		return repository.ErrSlotTaken
	}
	for _, existing := range s.appointments {
		if existing.Status.IsActive() && existing.DoctorID == apt.DoctorID && existing.StartTime.Equal(apt.StartTime) {
			return repository.ErrSlotTaken
		}
	}
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	cp := *apt
	s.appointments = append(s.appointments, &cp)
	if event != nil {
		s.events = append(s.events, event.EventType)
	}
	return nil
}

func (s *appointmentStore) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	for _, apt := range s.appointments {
		if apt.ID == id {
			cp := *apt
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *appointmentStore) Update(_ context.Context, apt *model.Appointment, event *model.OutboxEvent) error {
	if s.failNextWrite {
		s.failNextWrite = false
		return repository.ErrSlotTaken
	}
	for i, existing := range s.appointments {
		if existing.ID == apt.ID {
			cp := *apt
			s.appointments[i] = &cp
			if event != nil {
				s.events = append(s.events, event.EventType)
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *appointmentStore) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.appointments, nil
}

func (s *appointmentStore) ListActiveForDay(_ context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	y, m, d := date.Date()
	var out []*model.Appointment
	for _, apt := range s.appointments {
		ay, am, ad := apt.StartTime.Date()
		if apt.DoctorID == doctorID && ay == y && am == m && ad == d && apt.Status.IsActive() {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (s *appointmentStore) ExistsActiveAt(_ context.Context, doctorID uuid.UUID, at time.Time, excludeID *uuid.UUID) (bool, error) {
	for _, apt := range s.appointments {
		if excludeID != nil && apt.ID == *excludeID {
			continue
		}
		if apt.DoctorID == doctorID && apt.Status.IsActive() && apt.StartTime.Equal(at) {
			return true, nil
		}
	}
	return false, nil
}

func tod(hour, minute int) *timegrid.TimeOfDay {
	v := timegrid.NewTimeOfDay(hour, minute)
	return &v
}

type fixture struct {
	svc          *Service
	appointments *appointmentStore
	doctorID     uuid.UUID
	patientID    uuid.UUID
}

// newFixture wires a booking service against an in-memory ledger with a
// working Monday 09:00-17:00, break 12:00-13:00. The clock is pinned a
// week before the slots under test.
func newFixture() *fixture {
	doctorID := uuid.New()
	schedules := &scheduleStore{entries: map[time.Weekday]*model.WeeklyScheduleEntry{
		time.Monday: {
			DoctorID:    doctorID,
			Weekday:     time.Monday,
			IsAvailable: true,
			WorkStart:   tod(9, 0),
			WorkEnd:     tod(17, 0),
			BreakStart:  tod(12, 0),
			BreakEnd:    tod(13, 0),
		},
	}}
	appointments := &appointmentStore{}

	clock := func() time.Time { return time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC) }
	engine := availability.NewService(schedules, appointments).WithClock(clock)
	svc := NewService(appointments, engine, nil).WithClock(clock)

	return &fixture{
		svc:          svc,
		appointments: appointments,
		doctorID:     doctorID,
		patientID:    uuid.New(),
	}
}

func (f *fixture) createAt(t *testing.T, start time.Time) *model.Appointment {
	t.Helper()
	apt, err := f.svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:  f.doctorID,
		PatientID: f.patientID,
		StartTime: start,
	})
	require.NoError(t, err)
	return apt
}

var mondaySlot = time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC)

func TestCreateAppointment(t *testing.T) {
	f := newFixture()

	apt := f.createAt(t, mondaySlot)
	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Equal(t, mondaySlot, apt.StartTime)
	assert.Equal(t, mondaySlot.Add(30*time.Minute), apt.EndTime())
	assert.Equal(t, []string{model.EventAppointmentCreated}, f.appointments.events)
}

func TestCreateAppointmentConflicts(t *testing.T) {
	f := newFixture()
	f.createAt(t, mondaySlot)

	tests := []struct {
		name  string
		start time.Time
		want  model.ConflictReason
	}{
		{"double booking", mondaySlot, model.ConflictSlotOccupied},
		{"during break", time.Date(2025, 6, 9, 12, 30, 0, 0, time.UTC), model.ConflictDuringBreak},
		{"outside hours", time.Date(2025, 6, 9, 7, 0, 0, 0, time.UTC), model.ConflictOutsideWorkingHours},
		{"day off", time.Date(2025, 6, 8, 10, 0, 0, 0, time.UTC), model.ConflictDayUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
				DoctorID:  f.doctorID,
				PatientID: f.patientID,
				StartTime: tt.start,
			})
			var conflict *model.Conflict
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, tt.want, conflict.Reason)
		})
	}
}

func TestCreateAppointmentLostRace(t *testing.T) {
	f := newFixture()

	// The pre-check passes but a concurrent writer grabs the slot before
	// the insert; the unique index rejection surfaces as a conflict.
	f.appointments.failNextWrite = true
	_, err := f.svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:  f.doctorID,
		PatientID: f.patientID,
		StartTime: mondaySlot,
	})

	var conflict *model.Conflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, model.ConflictSlotOccupied, conflict.Reason)

	// The rejected write rolled back; no orphaned lifecycle event remains.
	assert.Empty(t, f.appointments.events)
}

func TestConfirmAppointment(t *testing.T) {
	f := newFixture()
	apt := f.createAt(t, mondaySlot)

	confirmed, err := f.svc.ConfirmAppointment(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, confirmed.Status)

	// Confirming twice is not a valid transition.
	_, err = f.svc.ConfirmAppointment(context.Background(), apt.ID)
	assert.Error(t, err)

	assert.Equal(t, []string{
		model.EventAppointmentCreated,
		model.EventAppointmentConfirmed,
	}, f.appointments.events)
}

func TestCancelAppointment(t *testing.T) {
	f := newFixture()
	apt := f.createAt(t, mondaySlot)

	_, err := f.svc.CancelAppointment(context.Background(), apt.ID, "")
	assert.Error(t, err, "a cancellation reason is required")

	cancelled, err := f.svc.CancelAppointment(context.Background(), apt.ID, "patient request")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "patient request", *cancelled.CancelReason)

	// Cancelled appointments are terminal.
	_, err = f.svc.ConfirmAppointment(context.Background(), apt.ID)
	assert.Error(t, err)

	// The freed slot is immediately bookable again.
	f.createAt(t, mondaySlot)
}

func TestCompleteAppointment(t *testing.T) {
	f := newFixture()
	apt := f.createAt(t, mondaySlot)

	// Pending appointments cannot be completed.
	_, err := f.svc.CompleteAppointment(context.Background(), apt.ID)
	assert.Error(t, err)

	_, err = f.svc.ConfirmAppointment(context.Background(), apt.ID)
	require.NoError(t, err)

	// Still before the start time.
	_, err = f.svc.CompleteAppointment(context.Background(), apt.ID)
	assert.Error(t, err)

	f.svc.WithClock(func() time.Time { return mondaySlot.Add(45 * time.Minute) })
	completed, err := f.svc.CompleteAppointment(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, completed.Status)
}

func TestRescheduleAppointment(t *testing.T) {
	f := newFixture()
	apt := f.createAt(t, mondaySlot)

	newStart := time.Date(2025, 6, 9, 14, 0, 0, 0, time.UTC)
	moved, err := f.svc.RescheduleAppointment(context.Background(), apt.ID, newStart)
	require.NoError(t, err)
	assert.Equal(t, newStart, moved.StartTime)
	assert.Equal(t, model.AppointmentStatusPending, moved.Status)

	// The old slot is free again.
	f.createAt(t, mondaySlot)

	assert.Contains(t, f.appointments.events, model.EventAppointmentRescheduled)
}

func TestRescheduleToOwnSlot(t *testing.T) {
	f := newFixture()
	apt := f.createAt(t, mondaySlot)

	// Rebooking the exact slot an appointment already holds is a no-op
	// success, not a collision with itself.
	moved, err := f.svc.RescheduleAppointment(context.Background(), apt.ID, mondaySlot)
	require.NoError(t, err)
	assert.Equal(t, mondaySlot, moved.StartTime)
}

func TestRescheduleConflicts(t *testing.T) {
	f := newFixture()
	apt := f.createAt(t, mondaySlot)
	other := f.createAt(t, time.Date(2025, 6, 9, 11, 0, 0, 0, time.UTC))

	_, err := f.svc.RescheduleAppointment(context.Background(), apt.ID, other.StartTime)
	var conflict *model.Conflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, model.ConflictSlotOccupied, conflict.Reason)

	// Terminal appointments cannot move.
	_, err = f.svc.CancelAppointment(context.Background(), apt.ID, "patient request")
	require.NoError(t, err)
	_, err = f.svc.RescheduleAppointment(context.Background(), apt.ID, time.Date(2025, 6, 9, 15, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}
