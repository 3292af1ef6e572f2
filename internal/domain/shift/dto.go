package shift

import (
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/pkg/validator"
)

type ShiftResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	BreakMinutes int       `json:"break_minutes"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToResponse(s *Shift) *ShiftResponse {
	return &ShiftResponse{
		ID:           s.ID,
		Name:         s.Name,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		BreakMinutes: s.BreakMinutes,
		IsActive:     s.IsActive,
		CreatedAt:    s.CreatedAt,
	}
}

type AssignmentResponse struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeName *string   `json:"employee_name,omitempty"`
	ShiftID      string    `json:"shift_id"`
	ShiftName    *string   `json:"shift_name,omitempty"`
	StartTime    *string   `json:"start_time,omitempty"`
	EndTime      *string   `json:"end_time,omitempty"`
	WorkDate     string    `json:"work_date"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToAssignmentResponse(a *Assignment) *AssignmentResponse {
	return &AssignmentResponse{
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		EmployeeName: a.EmployeeName,
		ShiftID:      a.ShiftID,
		ShiftName:    a.ShiftName,
		StartTime:    a.StartTime,
		EndTime:      a.EndTime,
		WorkDate:     a.WorkDate.Format("2006-01-02"),
		CreatedAt:    a.CreatedAt,
	}
}

type CreateShiftRequest struct {
	Name         string `json:"name"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	BreakMinutes int    `json:"break_minutes"`
}

func (r CreateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	if _, ok := validator.IsValidTimeOfDay(r.StartTime); !ok {
		errs = append(errs, validator.ValidationError{Field: "start_time", Message: "start_time must be in HH:MM format"})
	}
	if _, ok := validator.IsValidTimeOfDay(r.EndTime); !ok {
		errs = append(errs, validator.ValidationError{Field: "end_time", Message: "end_time must be in HH:MM format"})
	}
	if r.BreakMinutes < 0 || r.BreakMinutes > 480 {
		errs = append(errs, validator.ValidationError{Field: "break_minutes", Message: "break_minutes must be between 0 and 480"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateShiftRequest struct {
	Name         *string `json:"name,omitempty"`
	StartTime    *string `json:"start_time,omitempty"`
	EndTime      *string `json:"end_time,omitempty"`
	BreakMinutes *int    `json:"break_minutes,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

func (r UpdateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name cannot be empty"})
	}
	if r.StartTime != nil {
		if _, ok := validator.IsValidTimeOfDay(*r.StartTime); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_time", Message: "start_time must be in HH:MM format"})
		}
	}
	if r.EndTime != nil {
		if _, ok := validator.IsValidTimeOfDay(*r.EndTime); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_time", Message: "end_time must be in HH:MM format"})
		}
	}
	if r.BreakMinutes != nil && (*r.BreakMinutes < 0 || *r.BreakMinutes > 480) {
		errs = append(errs, validator.ValidationError{Field: "break_minutes", Message: "break_minutes must be between 0 and 480"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AssignRequest struct {
	EmployeeID string `json:"employee_id"`
	ShiftID    string `json:"shift_id"`
	WorkDate   string `json:"work_date"`
}

func (r AssignRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(r.ShiftID) {
		errs = append(errs, validator.ValidationError{Field: "shift_id", Message: "shift_id is required"})
	}
	if _, ok := validator.IsValidDate(r.WorkDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "work_date", Message: "work_date must be in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
