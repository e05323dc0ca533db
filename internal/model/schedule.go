package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/scheduler-api/pkg/timegrid"
)

// WeeklyScheduleEntry describes a doctor's working hours for one weekday.
// Weekday uses time.Weekday so lookup never depends on display locale.
type WeeklyScheduleEntry struct {
	Base
	DoctorID    uuid.UUID           `db:"doctor_id" json:"doctor_id"`
	Weekday     time.Weekday        `db:"weekday" json:"weekday"`
	IsAvailable bool                `db:"is_available" json:"is_available"`
	WorkStart   *timegrid.TimeOfDay `db:"work_start" json:"work_start,omitempty"`
	WorkEnd     *timegrid.TimeOfDay `db:"work_end" json:"work_end,omitempty"`
	BreakStart  *timegrid.TimeOfDay `db:"break_start" json:"break_start,omitempty"`
	BreakEnd    *timegrid.TimeOfDay `db:"break_end" json:"break_end,omitempty"`
}

// Validate enforces the schedule invariants: work bounds required when the
// day is available, work_end > work_start, break both-or-neither and
// contained in the working window.
func (e *WeeklyScheduleEntry) Validate() error {
	if e.Weekday < time.Sunday || e.Weekday > time.Saturday {
		return fmt.Errorf("invalid weekday %d", e.Weekday)
	}
	if !e.IsAvailable {
		return nil
	}
	if e.WorkStart == nil || e.WorkEnd == nil {
		return fmt.Errorf("work_start and work_end are required when the day is available")
	}
	if *e.WorkEnd <= *e.WorkStart {
		return fmt.Errorf("work_end must be after work_start")
	}
	if (e.BreakStart == nil) != (e.BreakEnd == nil) {
		return fmt.Errorf("break requires both break_start and break_end")
	}
	if e.BreakStart != nil {
		if *e.BreakEnd <= *e.BreakStart {
			return fmt.Errorf("break_end must be after break_start")
		}
		if *e.BreakStart < *e.WorkStart || *e.BreakEnd > *e.WorkEnd {
			return fmt.Errorf("break must fall within working hours")
		}
	}
	return nil
}

// WorkingWindow returns the working hours as an interval. Callers must
// check IsAvailable first.
func (e *WeeklyScheduleEntry) WorkingWindow() timegrid.Interval {
	return timegrid.Interval{Start: *e.WorkStart, End: *e.WorkEnd}
}

// BreakWindow returns the break interval, or nil when no break is set.
func (e *WeeklyScheduleEntry) BreakWindow() *timegrid.Interval {
	if e.BreakStart == nil || e.BreakEnd == nil {
		return nil
	}
	return &timegrid.Interval{Start: *e.BreakStart, End: *e.BreakEnd}
}

type UpsertScheduleRequest struct {
	Weekday     time.Weekday        `json:"weekday" binding:"min=0,max=6"`
	IsAvailable bool                `json:"is_available"`
	WorkStart   *timegrid.TimeOfDay `json:"work_start"`
	WorkEnd     *timegrid.TimeOfDay `json:"work_end"`
	BreakStart  *timegrid.TimeOfDay `json:"break_start"`
	BreakEnd    *timegrid.TimeOfDay `json:"break_end"`
}
