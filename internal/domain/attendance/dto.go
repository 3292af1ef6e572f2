package attendance

import (
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/pkg/validator"
)

type AttendanceResponse struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employee_id"`
	EmployeeName  *string    `json:"employee_name,omitempty"`
	EmployeeCode  *string    `json:"employee_code,omitempty"`
	Date          string     `json:"date"`
	CheckInTime   time.Time  `json:"check_in_time"`
	CheckOutTime  *time.Time `json:"check_out_time,omitempty"`
	TotalHours    *float64   `json:"total_hours,omitempty"`
	OvertimeHours *float64   `json:"overtime_hours,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func ToResponse(a *Attendance) *AttendanceResponse {
	return &AttendanceResponse{
		ID:            a.ID,
		EmployeeID:    a.EmployeeID,
		EmployeeName:  a.EmployeeName,
		EmployeeCode:  a.EmployeeCode,
		Date:          a.Date.Format("2006-01-02"),
		CheckInTime:   a.CheckInTime,
		CheckOutTime:  a.CheckOutTime,
		TotalHours:    a.TotalHours,
		OvertimeHours: a.OvertimeHours,
		Notes:         a.Notes,
		CreatedAt:     a.CreatedAt,
	}
}

// CheckInRequest opens today's attendance. Employee ID is taken from the
// authenticated actor unless an admin supplies one.
type CheckInRequest struct {
	EmployeeID string  `json:"employee_id,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

func (r CheckInRequest) Validate() error {
	return nil
}

type CheckOutRequest struct {
	EmployeeID string  `json:"employee_id,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

func (r CheckOutRequest) Validate() error {
	return nil
}

// UpdateRequest is an admin correction of a recorded day. Hours are
// re-derived from the corrected times.
type UpdateRequest struct {
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

func (r UpdateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.CheckInTime != nil && r.CheckOutTime != nil && r.CheckOutTime.Before(*r.CheckInTime) {
		errs = append(errs, validator.ValidationError{Field: "check_out_time", Message: "check_out_time cannot be before check_in_time"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
