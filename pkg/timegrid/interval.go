package timegrid

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInterval signals malformed time bounds (end <= start).
var ErrInvalidInterval = errors.New("invalid interval: end must be after start")

// TimeOfDay is a clock time expressed as minutes since midnight.
// It is locale-independent and cheap to compare.
type TimeOfDay int

const MinutesPerDay = 24 * 60

// NewTimeOfDay builds a TimeOfDay from hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// FromClock extracts the time-of-day component of a timestamp.
func FromClock(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// ParseTimeOfDay parses "HH:MM" (seconds tolerated and discarded).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return NewTimeOfDay(hour, minute), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Add returns the time-of-day d later. Results past midnight are clamped
// to MinutesPerDay so half-open interval math stays valid at day end.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	v := int(t) + int(d/time.Minute)
	if v > MinutesPerDay {
		v = MinutesPerDay
	}
	return TimeOfDay(v)
}

// At anchors the time-of-day onto a calendar date in that date's location.
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Scan implements sql.Scanner for postgres TIME columns.
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = 0
		return nil
	case time.Time:
		*t = FromClock(v)
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

func (t *TimeOfDay) scanString(s string) error {
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer, emitting "HH:MM:SS" for TIME columns.
func (t TimeOfDay) Value() (driver.Value, error) {
	return fmt.Sprintf("%02d:%02d:00", t.Hour(), t.Minute()), nil
}

// Interval is a half-open time-of-day range [Start, End).
type Interval struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

func (i Interval) validate() error {
	if i.End <= i.Start {
		return fmt.Errorf("%w: [%s, %s)", ErrInvalidInterval, i.Start, i.End)
	}
	return nil
}

// Overlaps reports whether two half-open intervals share any point.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// Contains reports whether inner lies entirely within outer. An inner
// interval ending exactly at outer.End is contained.
func Contains(outer, inner Interval) bool {
	return inner.Start >= outer.Start && inner.End <= outer.End
}

// SubtractBreak removes the break window from a working window, yielding
// zero, one or two sub-intervals. A nil break returns the working window
// unchanged. A break covering the whole window yields no intervals.
func SubtractBreak(work Interval, brk *Interval) ([]Interval, error) {
	if err := work.validate(); err != nil {
		return nil, err
	}
	if brk == nil {
		return []Interval{work}, nil
	}
	if err := brk.validate(); err != nil {
		return nil, err
	}
	if !Overlaps(work, *brk) {
		return []Interval{work}, nil
	}

	out := make([]Interval, 0, 2)
	if brk.Start > work.Start {
		out = append(out, Interval{Start: work.Start, End: brk.Start})
	}
	if brk.End < work.End {
		out = append(out, Interval{Start: brk.End, End: work.End})
	}
	return out, nil
}
