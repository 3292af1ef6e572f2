package leave

import (
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/pkg/validator"
)

// RequestResponse represents a leave request in API responses.
type RequestResponse struct {
	ID                string     `json:"id"`
	EmployeeID        string     `json:"employee_id"`
	EmployeeName      *string    `json:"employee_name,omitempty"`
	LeaveType         string     `json:"leave_type"`
	StartDate         string     `json:"start_date"`
	EndDate           string     `json:"end_date"`
	DurationType      string     `json:"duration_type"`
	TotalDays         float64    `json:"total_days"`
	Reason            string     `json:"reason,omitempty"`
	Status            string     `json:"status"`
	WorkflowID        *string    `json:"workflow_id,omitempty"`
	ApprovalLevel     int        `json:"approval_level"`
	MaxApprovalLevel  int        `json:"max_approval_level"`
	CurrentApproverID *string    `json:"current_approver_id,omitempty"`
	DecidedAt         *time.Time `json:"decided_at,omitempty"`
	CreatedAt         string     `json:"created_at"`
	UpdatedAt         string     `json:"updated_at"`
}

// ToResponse converts a Request entity into its API shape.
func (r Request) ToResponse() RequestResponse {
	return RequestResponse{
		ID:                r.ID,
		EmployeeID:        r.EmployeeID,
		EmployeeName:      r.EmployeeName,
		LeaveType:         string(r.Type),
		StartDate:         r.StartDate.Format("2006-01-02"),
		EndDate:           r.EndDate.Format("2006-01-02"),
		DurationType:      string(r.DurationType),
		TotalDays:         r.TotalDays,
		Reason:            r.Reason,
		Status:            string(r.Status),
		WorkflowID:        r.WorkflowID,
		ApprovalLevel:     r.ApprovalLevel,
		MaxApprovalLevel:  r.MaxApprovalLevel,
		CurrentApproverID: r.CurrentApproverID,
		DecidedAt:         r.DecidedAt,
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         r.UpdatedAt.Format(time.RFC3339),
	}
}

func validTypeStrings() []string {
	out := make([]string, len(Types))
	for i, t := range Types {
		out[i] = string(t)
	}
	return out
}

func validDurationTypeStrings() []string {
	out := make([]string, len(DurationTypes))
	for i, d := range DurationTypes {
		out[i] = string(d)
	}
	return out
}

// SubmitRequest submits a new leave request. EmployeeID comes from the
// caller's token for self-service submissions, or from the payload when HR
// submits on an employee's behalf.
type SubmitRequest struct {
	EmployeeID   string `json:"employee_id,omitempty"`
	LeaveType    string `json:"leave_type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	DurationType string `json:"duration_type,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.LeaveType, validTypeStrings()) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "invalid leave_type",
		})
	}

	var start, end time.Time
	var startOK, endOK bool
	if validator.IsEmpty(r.StartDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required",
		})
	} else if start, startOK = validator.IsValidDate(r.StartDate); !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	if validator.IsEmpty(r.EndDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date is required",
		})
	} else if end, endOK = validator.IsValidDate(r.EndDate); !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if r.DurationType != "" && !validator.IsInSlice(r.DurationType, validDurationTypeStrings()) {
		errs = append(errs, validator.ValidationError{
			Field:   "duration_type",
			Message: "invalid duration_type",
		})
	}

	if len(r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// DecisionRequest carries the optional note for approve/reject actions.
type DecisionRequest struct {
	Reason string `json:"reason,omitempty"`
}

// DelegateRequest hands the current approval step to another user.
type DelegateRequest struct {
	DelegateTo string `json:"delegate_to"`
	Reason     string `json:"reason,omitempty"`
}

func (r *DelegateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.DelegateTo) {
		errs = append(errs, validator.ValidationError{
			Field:   "delegate_to",
			Message: "delegate_to is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// EntitlementResponse represents a leave entitlement in API responses.
type EntitlementResponse struct {
	ID              string  `json:"id"`
	LeaveType       string  `json:"leave_type"`
	AnnualDays      float64 `json:"annual_days"`
	RequiresBalance bool    `json:"requires_balance"`
	UpdatedAt       string  `json:"updated_at"`
}

// ToResponse converts an Entitlement entity into its API shape.
func (e Entitlement) ToResponse() EntitlementResponse {
	return EntitlementResponse{
		ID:              e.ID,
		LeaveType:       string(e.LeaveType),
		AnnualDays:      e.AnnualDays,
		RequiresBalance: e.RequiresBalance,
		UpdatedAt:       e.UpdatedAt.Format(time.RFC3339),
	}
}

// UpsertEntitlementRequest sets the annual allowance for a leave type.
type UpsertEntitlementRequest struct {
	LeaveType       string  `json:"leave_type"`
	AnnualDays      float64 `json:"annual_days"`
	RequiresBalance *bool   `json:"requires_balance,omitempty"`
}

func (r *UpsertEntitlementRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.LeaveType, validTypeStrings()) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "invalid leave_type",
		})
	}

	if r.AnnualDays < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "annual_days",
			Message: "annual_days must not be negative",
		})
	}
	if r.AnnualDays > 366 {
		errs = append(errs, validator.ValidationError{
			Field:   "annual_days",
			Message: "annual_days must not exceed 366",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// BalanceResponse is the per-type remaining balance for one employee/year.
type BalanceResponse struct {
	EmployeeID string    `json:"employee_id"`
	Year       int       `json:"year"`
	Balances   []Balance `json:"balances"`
}
