package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkHours(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		shift Shift
		want  float64
	}{
		{
			name:  "day shift with lunch break",
			shift: Shift{StartTime: "09:00", EndTime: "18:00", BreakMinutes: 60},
			want:  8,
		},
		{
			name:  "night shift crosses midnight",
			shift: Shift{StartTime: "22:00", EndTime: "06:00", BreakMinutes: 30},
			want:  7.5,
		},
		{
			name:  "no break",
			shift: Shift{StartTime: "08:00", EndTime: "12:00"},
			want:  4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.shift.WorkHours()
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestWorkHoursInvalidTime(t *testing.T) {
	t.Parallel()
	_, err := Shift{StartTime: "9am", EndTime: "17:00"}.WorkHours()
	assert.Error(t, err)
}

func TestEndOnDate(t *testing.T) {
	t.Parallel()
	workDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	day := Shift{StartTime: "09:00", EndTime: "17:00"}
	end, err := day.EndOnDate(workDate)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC), end)

	night := Shift{StartTime: "22:00", EndTime: "06:00"}
	end, err = night.EndOnDate(workDate)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 11, 6, 0, 0, 0, time.UTC), end, "midnight-crossing shift ends the next day")
}
