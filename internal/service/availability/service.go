package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/scheduler-api/internal/model"
	"github.com/clinicore/scheduler-api/internal/repository"
	"github.com/clinicore/scheduler-api/pkg/timegrid"
)

// GracePeriod is the minimum lead time between now and a same-day slot's
// start for that slot to remain bookable.
const GracePeriod = 30 * time.Minute

const (
	scheduleCacheTTL     = time.Minute
	scheduleCacheCleanup = 5 * time.Minute
)

// Service is the single availability engine. Every caller that needs to
// know whether a slot is open (listing endpoints, the booking guard) goes
// through it; availability is never computed anywhere else.
type Service struct {
	schedules    repository.ScheduleRepository
	appointments repository.AppointmentRepository
	cache        *cache.Cache

	// now is the clock, swappable in tests for grace-period behavior.
	now func() time.Time
}

func NewService(schedules repository.ScheduleRepository, appointments repository.AppointmentRepository) *Service {
	return &Service{
		schedules:    schedules,
		appointments: appointments,
		cache:        cache.New(scheduleCacheTTL, scheduleCacheCleanup),
		now:          time.Now,
	}
}

// WithClock overrides the engine's clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// InvalidateSchedule drops the cached entries for a doctor after a
// schedule write so the next query sees fresh hours.
func (s *Service) InvalidateSchedule(doctorID uuid.UUID) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		s.cache.Delete(scheduleCacheKey(doctorID, wd))
	}
}

func scheduleCacheKey(doctorID uuid.UUID, weekday time.Weekday) string {
	return fmt.Sprintf("schedule:%s:%d", doctorID, weekday)
}

// scheduleEntry fetches a doctor's schedule for a weekday, serving cache
// hits first. A missing entry is returned as (nil, nil): the caller treats
// "no schedule configured" the same as an unavailable day.
func (s *Service) scheduleEntry(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday) (*model.WeeklyScheduleEntry, error) {
	key := scheduleCacheKey(doctorID, weekday)
	if cached, found := s.cache.Get(key); found {
		return cached.(*model.WeeklyScheduleEntry), nil
	}

	entry, err := s.schedules.GetEntry(ctx, doctorID, weekday)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule entry: %w", err)
	}

	s.cache.Set(key, entry, cache.DefaultExpiration)
	return entry, nil
}

// workingWindows computes the doctor's working sub-intervals for a weekday
// with the break removed. Malformed schedule data degrades to "no windows"
// rather than an error.
func (s *Service) workingWindows(entry *model.WeeklyScheduleEntry) []timegrid.Interval {
	if entry == nil || !entry.IsAvailable {
		return nil
	}
	windows, err := timegrid.SubtractBreak(entry.WorkingWindow(), entry.BreakWindow())
	if err != nil {
		log.Warn().
			Err(err).
			Str("doctor_id", entry.DoctorID.String()).
			Int("weekday", int(entry.Weekday)).
			Msg("malformed schedule entry, treating day as unavailable")
		return nil
	}
	return windows
}

// ListAvailableSlots returns every open slot for a doctor on a calendar
// date, in ascending time order. An unconfigured or unavailable day yields
// an empty list, never an error.
func (s *Service) ListAvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]model.TimeSlot, error) {
	entry, err := s.scheduleEntry(ctx, doctorID, date.Weekday())
	if err != nil {
		return nil, err
	}

	windows := s.workingWindows(entry)
	if len(windows) == 0 {
		return []model.TimeSlot{}, nil
	}

	appointments, err := s.appointments.ListActiveForDay(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	occupied := make(map[timegrid.TimeOfDay]bool, len(appointments))
	for _, apt := range appointments {
		if apt.Status.IsActive() {
			occupied[timegrid.FromClock(apt.StartTime.In(date.Location()))] = true
		}
	}

	now := s.now()
	sameDay := sameDate(date, now.In(date.Location()))
	cutoff := now.Add(GracePeriod)

	slots := make([]model.TimeSlot, 0, len(windows)*8)
	for _, start := range timegrid.DaySlots(timegrid.SlotDuration) {
		if !timegrid.FitsWithin(start, timegrid.SlotDuration, windows) {
			continue
		}
		if occupied[start] {
			continue
		}
		if sameDay && !start.At(date).After(cutoff) {
			continue
		}
		slots = append(slots, model.TimeSlot{Start: start, Available: true})
	}

	return slots, nil
}

// IsSlotAvailable reports whether the exact slot is open. It short-circuits
// instead of enumerating the whole day but decides identically to
// membership in ListAvailableSlots.
func (s *Service) IsSlotAvailable(ctx context.Context, doctorID uuid.UUID, at time.Time) (bool, error) {
	err := s.CheckSlot(ctx, doctorID, at, nil)
	var conflict *model.Conflict
	if errors.As(err, &conflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CheckSlot validates a single requested slot and returns a typed
// *model.Conflict describing the first failing rule, or nil when the slot
// is bookable. excludeID ignores one appointment's own occupancy so a
// reschedule does not conflict with itself.
func (s *Service) CheckSlot(ctx context.Context, doctorID uuid.UUID, at time.Time, excludeID *uuid.UUID) error {
	start := timegrid.FromClock(at)
	if !timegrid.Aligned(start, timegrid.SlotDuration) || at.Second() != 0 || at.Nanosecond() != 0 {
		return model.NewConflict(model.ConflictOutsideWorkingHours)
	}

	entry, err := s.scheduleEntry(ctx, doctorID, at.Weekday())
	if err != nil {
		return err
	}
	if entry == nil || !entry.IsAvailable {
		return model.NewConflict(model.ConflictDayUnavailable)
	}

	windows := s.workingWindows(entry)
	if len(windows) == 0 {
		return model.NewConflict(model.ConflictDayUnavailable)
	}

	if !timegrid.FitsWithin(start, timegrid.SlotDuration, windows) {
		slot := timegrid.Interval{Start: start, End: start.Add(timegrid.SlotDuration)}
		if brk := entry.BreakWindow(); brk != nil && timegrid.Overlaps(slot, *brk) {
			return model.NewConflict(model.ConflictDuringBreak)
		}
		return model.NewConflict(model.ConflictOutsideWorkingHours)
	}

	now := s.now()
	if sameDate(at, now.In(at.Location())) && !at.After(now.Add(GracePeriod)) {
		return model.NewConflict(model.ConflictSlotInPast)
	}

	occupied, err := s.appointments.ExistsActiveAt(ctx, doctorID, at, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check slot occupancy: %w", err)
	}
	if occupied {
		return model.NewConflict(model.ConflictSlotOccupied)
	}

	return nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
