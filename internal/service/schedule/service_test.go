package schedule

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
	out := make([]*model.WeeklyScheduleEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out, nil
}

func (s *scheduleStore) Delete(_ context.Context, _ uuid.UUID, weekday time.Weekday) error {
	delete(s.entries, weekday)
	return nil
}

type doctorStore struct {
	doctors map[uuid.UUID]*model.Doctor
}

func (s *doctorStore) Create(_ context.Context, doctor *model.Doctor) error {
	doctor.ID = uuid.New()
	s.doctors[doctor.ID] = doctor
	return nil
}

func (s *doctorStore) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, ok := s.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return doctor, nil
}

func (s *doctorStore) Update(_ context.Context, doctor *model.Doctor) error {
	s.doctors[doctor.ID] = doctor
	return nil
}

func (s *doctorStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.doctors, id)
	return nil
}

func (s *doctorStore) List(_ context.Context, _ *model.Pagination) ([]*model.Doctor, error) {
	out := make([]*model.Doctor, 0, len(s.doctors))
	for _, d := range s.doctors {
		out = append(out, d)
	}
	return out, nil
}

type appointmentStoreStub struct{}

func (appointmentStoreStub) Create(_ context.Context, _ *model.Appointment, _ *model.OutboxEvent) error {
	return nil
}
func (appointmentStoreStub) Get(_ context.Context, _ uuid.UUID) (*model.Appointment, error) {
	return nil, repository.ErrNotFound
}
func (appointmentStoreStub) Update(_ context.Context, _ *model.Appointment, _ *model.OutboxEvent) error {
	return nil
}
func (appointmentStoreStub) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}
func (appointmentStoreStub) ListActiveForDay(_ context.Context, _ uuid.UUID, _ time.Time) ([]*model.Appointment, error) {
	return nil, nil
}
func (appointmentStoreStub) ExistsActiveAt(_ context.Context, _ uuid.UUID, _ time.Time, _ *uuid.UUID) (bool, error) {
	return false, nil
}

func tod(hour, minute int) *timegrid.TimeOfDay {
	v := timegrid.NewTimeOfDay(hour, minute)
	return &v
}

func newTestService() (*Service, *availability.Service, uuid.UUID) {
	schedules := &scheduleStore{entries: map[time.Weekday]*model.WeeklyScheduleEntry{}}
	doctors := &doctorStore{doctors: map[uuid.UUID]*model.Doctor{}}

	doctor := &model.Doctor{Name: "Dr. Chen", Email: "chen@clinic.test", Specialty: "dermatology"}
	_ = doctors.Create(context.Background(), doctor)

	engine := availability.NewService(schedules, appointmentStoreStub{}).WithClock(func() time.Time {
		return time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	})
	return NewService(schedules, doctors, engine), engine, doctor.ID
}

func validRequest() *model.UpsertScheduleRequest {
	return &model.UpsertScheduleRequest{
		Weekday:     time.Monday,
		IsAvailable: true,
		WorkStart:   tod(9, 0),
		WorkEnd:     tod(17, 0),
		BreakStart:  tod(12, 0),
		BreakEnd:    tod(13, 0),
	}
}

func TestUpsertEntry(t *testing.T) {
	svc, _, doctorID := newTestService()

	entry, err := svc.UpsertEntry(context.Background(), doctorID, validRequest())
	require.NoError(t, err)
	assert.Equal(t, doctorID, entry.DoctorID)
	assert.Equal(t, time.Monday, entry.Weekday)

	entries, err := svc.ListForDoctor(context.Background(), doctorID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpsertEntryUnknownDoctor(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.UpsertEntry(context.Background(), uuid.New(), validRequest())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpsertEntryValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.UpsertScheduleRequest)
	}{
		{"work end before start", func(r *model.UpsertScheduleRequest) {
			r.WorkStart = tod(17, 0)
			r.WorkEnd = tod(9, 0)
		}},
		{"missing work bounds", func(r *model.UpsertScheduleRequest) {
			r.WorkStart = nil
			r.WorkEnd = nil
		}},
		{"break without end", func(r *model.UpsertScheduleRequest) {
			r.BreakEnd = nil
		}},
		{"break end before start", func(r *model.UpsertScheduleRequest) {
			r.BreakStart = tod(13, 0)
			r.BreakEnd = tod(12, 0)
		}},
		{"break outside working hours", func(r *model.UpsertScheduleRequest) {
			r.BreakStart = tod(8, 0)
			r.BreakEnd = tod(9, 30)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, doctorID := newTestService()
			req := validRequest()
			tt.mutate(req)
			_, err := svc.UpsertEntry(context.Background(), doctorID, req)
			assert.ErrorIs(t, err, ErrInvalidSchedule)
		})
	}
}

func TestUpsertEntryDayOffNeedsNoHours(t *testing.T) {
	svc, _, doctorID := newTestService()

	entry, err := svc.UpsertEntry(context.Background(), doctorID, &model.UpsertScheduleRequest{
		Weekday:     time.Sunday,
		IsAvailable: false,
	})
	require.NoError(t, err)
	assert.False(t, entry.IsAvailable)
}

func TestUpsertRefreshesAvailability(t *testing.T) {
	svc, engine, doctorID := newTestService()
	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	_, err := svc.UpsertEntry(context.Background(), doctorID, validRequest())
	require.NoError(t, err)

	// Warm the engine's cache with the full day.
	slots, err := engine.ListAvailableSlots(context.Background(), doctorID, monday)
	require.NoError(t, err)
	assert.Len(t, slots, 14)

	// Shorten the day. The write invalidates the cached entry, so the new
	// hours apply to the very next query.
	_, err = svc.UpsertEntry(context.Background(), doctorID, &model.UpsertScheduleRequest{
		Weekday:     time.Monday,
		IsAvailable: true,
		WorkStart:   tod(9, 0),
		WorkEnd:     tod(12, 0),
	})
	require.NoError(t, err)

	slots, err = engine.ListAvailableSlots(context.Background(), doctorID, monday)
	require.NoError(t, err)
	assert.Len(t, slots, 6)
}

func TestDeleteEntry(t *testing.T) {
	svc, engine, doctorID := newTestService()
	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	_, err := svc.UpsertEntry(context.Background(), doctorID, validRequest())
	require.NoError(t, err)

	slots, err := engine.ListAvailableSlots(context.Background(), doctorID, monday)
	require.NoError(t, err)
	assert.Len(t, slots, 14)

	require.NoError(t, svc.DeleteEntry(context.Background(), doctorID, time.Monday))

	slots, err = engine.ListAvailableSlots(context.Background(), doctorID, monday)
	require.NoError(t, err)
	assert.Empty(t, slots)

	assert.Error(t, svc.DeleteEntry(context.Background(), doctorID, time.Weekday(9)))
}
