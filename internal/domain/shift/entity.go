package shift

import (
	"fmt"
	"time"
)

// Shift is a reusable working-time template. Times are stored as "HH:MM"
// wall-clock strings; an end before the start means the shift crosses
// midnight.
type Shift struct {
	ID           string
	Name         string
	StartTime    string
	EndTime      string
	BreakMinutes int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Assignment binds an employee to a shift for one work date.
type Assignment struct {
	ID         string
	EmployeeID string
	ShiftID    string
	WorkDate   time.Time
	CreatedAt  time.Time

	// Joined fields, populated by list queries
	ShiftName    *string
	StartTime    *string
	EndTime      *string
	EmployeeName *string
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// WorkHours returns the net working hours of the shift: the start-to-end
// span (wrapping across midnight when needed) minus the break.
func (s Shift) WorkHours() (float64, error) {
	start, err := parseClock(s.StartTime)
	if err != nil {
		return 0, err
	}
	end, err := parseClock(s.EndTime)
	if err != nil {
		return 0, err
	}
	span := end - start
	if span <= 0 {
		span += 24 * time.Hour
	}
	span -= time.Duration(s.BreakMinutes) * time.Minute
	if span < 0 {
		span = 0
	}
	return span.Hours(), nil
}

// EndOnDate anchors the shift's end time to a concrete work date, rolling to
// the next day for shifts that cross midnight.
func (s Shift) EndOnDate(workDate time.Time) (time.Time, error) {
	start, err := parseClock(s.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	end, err := parseClock(s.EndTime)
	if err != nil {
		return time.Time{}, err
	}
	day := time.Date(workDate.Year(), workDate.Month(), workDate.Day(), 0, 0, 0, 0, workDate.Location())
	if end <= start {
		day = day.AddDate(0, 0, 1)
	}
	return day.Add(end), nil
}
