package timegrid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaySlots(t *testing.T) {
	slots := DaySlots(SlotDuration)
	assert.Len(t, slots, 48)
	assert.Equal(t, NewTimeOfDay(0, 0), slots[0])
	assert.Equal(t, NewTimeOfDay(23, 30), slots[len(slots)-1])

	// Deterministic across calls.
	assert.Equal(t, slots, DaySlots(SlotDuration))

	assert.Len(t, DaySlots(time.Hour), 24)
	assert.Nil(t, DaySlots(0))
}

func TestAligned(t *testing.T) {
	assert.True(t, Aligned(NewTimeOfDay(9, 0), SlotDuration))
	assert.True(t, Aligned(NewTimeOfDay(9, 30), SlotDuration))
	assert.False(t, Aligned(NewTimeOfDay(9, 15), SlotDuration))
	assert.False(t, Aligned(NewTimeOfDay(9, 1), SlotDuration))
	assert.False(t, Aligned(NewTimeOfDay(9, 0), 0))
}

func TestFitsWithin(t *testing.T) {
	windows := []Interval{
		{Start: NewTimeOfDay(9, 0), End: NewTimeOfDay(12, 0)},
		{Start: NewTimeOfDay(13, 0), End: NewTimeOfDay(17, 0)},
	}

	assert.True(t, FitsWithin(NewTimeOfDay(9, 0), SlotDuration, windows))
	assert.True(t, FitsWithin(NewTimeOfDay(11, 30), SlotDuration, windows))
	assert.True(t, FitsWithin(NewTimeOfDay(16, 30), SlotDuration, windows))

	// A slot spilling into the gap between windows does not fit.
	assert.False(t, FitsWithin(NewTimeOfDay(11, 45), SlotDuration, windows))
	assert.False(t, FitsWithin(NewTimeOfDay(12, 0), SlotDuration, windows))
	assert.False(t, FitsWithin(NewTimeOfDay(12, 30), SlotDuration, windows))
	assert.False(t, FitsWithin(NewTimeOfDay(17, 0), SlotDuration, windows))
	assert.False(t, FitsWithin(NewTimeOfDay(8, 30), SlotDuration, windows))
	assert.False(t, FitsWithin(NewTimeOfDay(9, 0), SlotDuration, nil))
}
