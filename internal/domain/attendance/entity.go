package attendance

import "time"

// Attendance is one employee-day of presence. One row per employee per date;
// total and overtime hours are derived from the check-in/out delta against
// the day's expected working hours.
type Attendance struct {
	ID            string
	EmployeeID    string
	Date          time.Time
	CheckInTime   time.Time
	CheckOutTime  *time.Time
	TotalHours    *float64
	OvertimeHours *float64
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Joined fields, populated by list/detail queries
	EmployeeName *string
	EmployeeCode *string
}

// Open reports whether the attendance is still waiting for a check-out.
func (a Attendance) Open() bool {
	return a.CheckOutTime == nil
}

// ComputeHours derives (total, overtime) from a check-in/out pair. Overtime
// is the portion beyond expectedHours, zero when the day ran short. A
// check-out before check-in yields (0, 0).
func ComputeHours(checkIn, checkOut time.Time, expectedHours float64) (total, overtime float64) {
	delta := checkOut.Sub(checkIn).Hours()
	if delta <= 0 {
		return 0, 0
	}
	total = delta
	if total > expectedHours {
		overtime = total - expectedHours
	}
	return total, overtime
}
