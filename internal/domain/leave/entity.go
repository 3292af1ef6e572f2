package leave

import (
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"
)

// Type is a leave category with its own annual entitlement.
type Type string

const (
	TypeAnnual    Type = "annual"
	TypeSick      Type = "sick"
	TypeUnpaid    Type = "unpaid"
	TypeMaternity Type = "maternity"
	TypePaternity Type = "paternity"
)

// Types lists every requestable leave type.
var Types = []Type{TypeAnnual, TypeSick, TypeUnpaid, TypeMaternity, TypePaternity}

type DurationType string

const (
	DurationFullDay          DurationType = "full_day"
	DurationHalfDayMorning   DurationType = "half_day_morning"
	DurationHalfDayAfternoon DurationType = "half_day_afternoon"
)

var DurationTypes = []DurationType{DurationFullDay, DurationHalfDayMorning, DurationHalfDayAfternoon}

// IsHalfDay reports whether the duration contributes 0.5 days.
func (d DurationType) IsHalfDay() bool {
	return d == DurationHalfDayMorning || d == DurationHalfDayAfternoon
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// Request is a leave request moving through the approval machine.
// ApprovalLevel counts completed approval steps; the request is fully
// approved once it reaches MaxApprovalLevel.
type Request struct {
	ID                string
	EmployeeID        string
	Type              Type
	StartDate         time.Time
	EndDate           time.Time
	DurationType      DurationType
	TotalDays         float64
	Reason            string
	Status            Status
	WorkflowID        *string
	ApprovalLevel     int
	MaxApprovalLevel  int
	CurrentApproverID *string
	DecidedAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Joined fields, populated by list/detail queries
	EmployeeName *string
}

// Overlaps reports whether the request's inclusive date range shares at
// least one day with [start, end].
func (r Request) Overlaps(start, end time.Time) bool {
	return !r.StartDate.After(end) && !r.EndDate.Before(start)
}

// ComputeDuration returns the inclusive day count between start and end.
// Half-day duration types require a single-day range and contribute 0.5.
func ComputeDuration(start, end time.Time, durationType DurationType) (float64, error) {
	if end.Before(start) {
		return 0, apperrors.Invalid("end_date must not be before start_date")
	}
	if durationType.IsHalfDay() {
		if !start.Equal(end) {
			return 0, apperrors.Invalid("half-day leave must start and end on the same date")
		}
		return 0.5, nil
	}
	days := end.Sub(start).Hours()/24 + 1
	return float64(int(days + 0.5)), nil
}

// Entitlement is the annual allowance for one leave type. Types with
// RequiresBalance false (unpaid leave) are exempt from balance checks.
type Entitlement struct {
	ID              string
	LeaveType       Type
	AnnualDays      float64
	RequiresBalance bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Balance is the per-type remaining allowance for one employee and year.
type Balance struct {
	LeaveType       Type    `json:"leave_type"`
	EntitledDays    float64 `json:"entitled_days"`
	UsedDays        float64 `json:"used_days"`
	PendingDays     float64 `json:"pending_days"`
	RemainingDays   float64 `json:"remaining_days"`
	RequiresBalance bool    `json:"requires_balance"`
}
