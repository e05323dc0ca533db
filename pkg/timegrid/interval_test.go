package timegrid

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{"09:00", NewTimeOfDay(9, 0), false},
		{"00:00", NewTimeOfDay(0, 0), false},
		{"23:59", NewTimeOfDay(23, 59), false},
		{"12:30", NewTimeOfDay(12, 30), false},
		{"24:00", 0, true},
		{"10:60", 0, true},
		{"-1:00", 0, true},
		{"not a time", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "09:00", NewTimeOfDay(9, 0).String())
	assert.Equal(t, "00:05", NewTimeOfDay(0, 5).String())
	assert.Equal(t, "23:30", NewTimeOfDay(23, 30).String())
}

func TestTimeOfDayAdd(t *testing.T) {
	assert.Equal(t, NewTimeOfDay(9, 30), NewTimeOfDay(9, 0).Add(30*time.Minute))
	// Past-midnight results clamp so interval math stays half-open.
	assert.Equal(t, TimeOfDay(MinutesPerDay), NewTimeOfDay(23, 45).Add(30*time.Minute))
}

func TestTimeOfDayAt(t *testing.T) {
	date := time.Date(2025, 6, 9, 17, 42, 11, 0, time.UTC)
	got := NewTimeOfDay(9, 30).At(date)
	assert.Equal(t, time.Date(2025, 6, 9, 9, 30, 0, 0, time.UTC), got)
}

func TestTimeOfDayJSON(t *testing.T) {
	data, err := json.Marshal(NewTimeOfDay(13, 15))
	require.NoError(t, err)
	assert.Equal(t, `"13:15"`, string(data))

	var parsed TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"08:30"`), &parsed))
	assert.Equal(t, NewTimeOfDay(8, 30), parsed)

	assert.Error(t, json.Unmarshal([]byte(`"25:00"`), &parsed))
	assert.Error(t, json.Unmarshal([]byte(`42`), &parsed))
}

func TestTimeOfDayScan(t *testing.T) {
	var tod TimeOfDay

	require.NoError(t, tod.Scan("14:30:00"))
	assert.Equal(t, NewTimeOfDay(14, 30), tod)

	require.NoError(t, tod.Scan([]byte("07:00:00")))
	assert.Equal(t, NewTimeOfDay(7, 0), tod)

	require.NoError(t, tod.Scan(time.Date(2000, 1, 1, 16, 45, 0, 0, time.UTC)))
	assert.Equal(t, NewTimeOfDay(16, 45), tod)

	assert.Error(t, tod.Scan(3.14))
}

func TestTimeOfDayValue(t *testing.T) {
	v, err := NewTimeOfDay(9, 5).Value()
	require.NoError(t, err)
	assert.Equal(t, "09:05:00", v)
}

func TestOverlaps(t *testing.T) {
	morning := Interval{Start: NewTimeOfDay(9, 0), End: NewTimeOfDay(12, 0)}

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"identical", morning, true},
		{"contained", Interval{NewTimeOfDay(10, 0), NewTimeOfDay(11, 0)}, true},
		{"partial", Interval{NewTimeOfDay(11, 0), NewTimeOfDay(13, 0)}, true},
		{"touching at end", Interval{NewTimeOfDay(12, 0), NewTimeOfDay(13, 0)}, false},
		{"touching at start", Interval{NewTimeOfDay(8, 0), NewTimeOfDay(9, 0)}, false},
		{"disjoint", Interval{NewTimeOfDay(14, 0), NewTimeOfDay(15, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(morning, tt.other))
			assert.Equal(t, tt.want, Overlaps(tt.other, morning))
		})
	}
}

func TestContains(t *testing.T) {
	work := Interval{Start: NewTimeOfDay(9, 0), End: NewTimeOfDay(17, 0)}

	assert.True(t, Contains(work, Interval{NewTimeOfDay(9, 0), NewTimeOfDay(9, 30)}))
	// Ending exactly at the boundary still counts because both are half-open.
	assert.True(t, Contains(work, Interval{NewTimeOfDay(16, 30), NewTimeOfDay(17, 0)}))
	assert.False(t, Contains(work, Interval{NewTimeOfDay(16, 45), NewTimeOfDay(17, 15)}))
	assert.False(t, Contains(work, Interval{NewTimeOfDay(8, 30), NewTimeOfDay(9, 0)}))
}

func TestSubtractBreak(t *testing.T) {
	work := Interval{Start: NewTimeOfDay(9, 0), End: NewTimeOfDay(17, 0)}

	t.Run("no break", func(t *testing.T) {
		got, err := SubtractBreak(work, nil)
		require.NoError(t, err)
		assert.Equal(t, []Interval{work}, got)
	})

	t.Run("midday break splits the day", func(t *testing.T) {
		brk := Interval{Start: NewTimeOfDay(12, 0), End: NewTimeOfDay(13, 0)}
		got, err := SubtractBreak(work, &brk)
		require.NoError(t, err)
		assert.Equal(t, []Interval{
			{NewTimeOfDay(9, 0), NewTimeOfDay(12, 0)},
			{NewTimeOfDay(13, 0), NewTimeOfDay(17, 0)},
		}, got)
	})

	t.Run("break at start of day", func(t *testing.T) {
		brk := Interval{Start: NewTimeOfDay(9, 0), End: NewTimeOfDay(10, 0)}
		got, err := SubtractBreak(work, &brk)
		require.NoError(t, err)
		assert.Equal(t, []Interval{{NewTimeOfDay(10, 0), NewTimeOfDay(17, 0)}}, got)
	})

	t.Run("break at end of day", func(t *testing.T) {
		brk := Interval{Start: NewTimeOfDay(16, 0), End: NewTimeOfDay(17, 0)}
		got, err := SubtractBreak(work, &brk)
		require.NoError(t, err)
		assert.Equal(t, []Interval{{NewTimeOfDay(9, 0), NewTimeOfDay(16, 0)}}, got)
	})

	t.Run("break covers whole day", func(t *testing.T) {
		brk := Interval{Start: NewTimeOfDay(8, 0), End: NewTimeOfDay(18, 0)}
		got, err := SubtractBreak(work, &brk)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("break outside working hours", func(t *testing.T) {
		brk := Interval{Start: NewTimeOfDay(18, 0), End: NewTimeOfDay(19, 0)}
		got, err := SubtractBreak(work, &brk)
		require.NoError(t, err)
		assert.Equal(t, []Interval{work}, got)
	})

	t.Run("inverted working window", func(t *testing.T) {
		_, err := SubtractBreak(Interval{Start: NewTimeOfDay(17, 0), End: NewTimeOfDay(9, 0)}, nil)
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})

	t.Run("inverted break", func(t *testing.T) {
		brk := Interval{Start: NewTimeOfDay(13, 0), End: NewTimeOfDay(12, 0)}
		_, err := SubtractBreak(work, &brk)
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})
}
