package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/scheduler-api/pkg/timegrid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// IsActive reports whether the status occupies its slot. Cancelled and
// completed appointments never block a booking.
func (s AppointmentStatus) IsActive() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusConfirmed
}

// IsTerminal reports whether no further transitions are allowed.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCancelled || s == AppointmentStatusCompleted
}

// CanTransitionTo encodes the appointment state machine:
// pending -> confirmed|cancelled, confirmed -> cancelled|completed.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch s {
	case AppointmentStatusPending:
		return next == AppointmentStatusConfirmed || next == AppointmentStatusCancelled
	case AppointmentStatusConfirmed:
		return next == AppointmentStatusCancelled || next == AppointmentStatusCompleted
	default:
		return false
	}
}

type Appointment struct {
	Base
	DoctorID     uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	PatientID    uuid.UUID         `db:"patient_id" json:"patient_id"`
	StartTime    time.Time         `db:"start_time" json:"start_time"`
	Status       AppointmentStatus `db:"status" json:"status"`
	Notes        string            `db:"notes" json:"notes,omitempty"`
	CancelReason *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

// EndTime derives the appointment end from the fixed slot granularity.
func (a *Appointment) EndTime() time.Time {
	return a.StartTime.Add(timegrid.SlotDuration)
}

type CreateAppointmentRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id" binding:"required"`
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	Notes     string    `json:"notes" binding:"max=1000"`
}

type RescheduleAppointmentRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"required,notblank,max=500"`
}

type AppointmentFilters struct {
	DoctorID   uuid.UUID
	PatientID  uuid.UUID
	Status     AppointmentStatus
	StartDate  time.Time
	EndDate    time.Time
	Pagination Pagination
}

// TimeSlot is a bookable candidate start, derived per query and never stored.
type TimeSlot struct {
	Start     timegrid.TimeOfDay `json:"start_time"`
	Available bool               `json:"available"`
}
