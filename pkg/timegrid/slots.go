package timegrid

import "time"

// SlotDuration is the fixed booking granularity. Slots only ever start on
// multiples of this from midnight; arbitrary start times are never offered.
const SlotDuration = 30 * time.Minute

// DaySlots enumerates every candidate slot start in a day at the given
// granularity, 00:00 up to the last start that still fits before midnight.
// Stateless: repeated calls yield identical output.
func DaySlots(granularity time.Duration) []TimeOfDay {
	step := int(granularity / time.Minute)
	if step <= 0 {
		return nil
	}
	slots := make([]TimeOfDay, 0, MinutesPerDay/step)
	for m := 0; m+step <= MinutesPerDay; m += step {
		slots = append(slots, TimeOfDay(m))
	}
	return slots
}

// Aligned reports whether t sits on the slot grid for the given granularity.
func Aligned(t TimeOfDay, granularity time.Duration) bool {
	step := int(granularity / time.Minute)
	return step > 0 && int(t)%step == 0
}

// FitsWithin reports whether the slot starting at start with the given
// duration lies entirely inside one of the windows. A slot that touches a
// gap between windows (i.e. a break) even partially does not fit.
func FitsWithin(start TimeOfDay, duration time.Duration, windows []Interval) bool {
	slot := Interval{Start: start, End: start.Add(duration)}
	for _, w := range windows {
		if Contains(w, slot) {
			return true
		}
	}
	return false
}
