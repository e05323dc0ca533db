package model

import "fmt"

// ConflictReason classifies why a requested slot cannot be booked.
type ConflictReason string

const (
	ConflictDayUnavailable      ConflictReason = "day_unavailable"
	ConflictOutsideWorkingHours ConflictReason = "outside_working_hours"
	ConflictDuringBreak         ConflictReason = "during_break"
	ConflictSlotOccupied        ConflictReason = "slot_occupied"
	ConflictSlotInPast          ConflictReason = "slot_in_past"
)

// Conflict is the value returned when a booking is rejected. It is a normal
// outcome, carried as an error only so it travels the usual return path.
type Conflict struct {
	Reason ConflictReason
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("booking conflict: %s", c.Reason)
}

func NewConflict(reason ConflictReason) *Conflict {
	return &Conflict{Reason: reason}
}
