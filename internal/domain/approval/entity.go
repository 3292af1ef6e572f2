package approval

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// EntityType is the business object category a workflow applies to.
type EntityType string

const (
	EntityTypeLeave    EntityType = "leave"
	EntityTypeLoan     EntityType = "loan"
	EntityTypeExpense  EntityType = "expense"
	EntityTypePurchase EntityType = "purchase"
	EntityTypeCustom   EntityType = "custom"
)

// EntityTypes lists every configurable entity type.
var EntityTypes = []EntityType{EntityTypeLeave, EntityTypeLoan, EntityTypeExpense, EntityTypePurchase, EntityTypeCustom}

// ApproverType selects how a step's approver is resolved.
type ApproverType string

const (
	ApproverSpecificUser   ApproverType = "specific_user"
	ApproverDepartmentHead ApproverType = "department_head"
	ApproverPositionBased  ApproverType = "position_based"
	ApproverRoleBased      ApproverType = "role_based"
	ApproverAnyManager     ApproverType = "any_manager"
	ApproverHRManager      ApproverType = "hr_manager"
	ApproverFinanceManager ApproverType = "finance_manager"
)

// ApproverTypes lists every configurable approver type.
var ApproverTypes = []ApproverType{
	ApproverSpecificUser, ApproverDepartmentHead, ApproverPositionBased,
	ApproverRoleBased, ApproverAnyManager, ApproverHRManager, ApproverFinanceManager,
}

// Machine states shared by every approvable entity. Loans carry further
// post-approval statuses (active, completed, defaulted) that are outside the
// approval machine; the machine only ever transitions a pending row.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// Settings is the workflow's open configuration map, stored as JSONB.
type Settings map[string]interface{}

// Value implements driver.Valuer for database storage.
func (s Settings) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for database retrieval.
func (s *Settings) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan Settings: invalid type")
	}
	return json.Unmarshal(bytes, s)
}

// Workflow is an approval chain definition. Scoping fields narrow which
// submissions it applies to; nil scopes match anything.
type Workflow struct {
	ID           string
	Name         string
	EntityType   EntityType
	DepartmentID *string
	PositionID   *string
	MinAmount    *decimal.Decimal
	MaxAmount    *decimal.Decimal
	IsActive     bool
	Settings     Settings
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Steps sorted by StepOrder ascending.
	Steps []Step
}

// Step is one stage of a workflow with an approver-selection rule.
type Step struct {
	ID           string
	WorkflowID   string
	StepOrder    int
	ApproverType ApproverType
	ApproverID   *string
	PositionID   *string
	RoleID       *string
	DepartmentID *string
	IsRequired   bool
	CanDelegate  bool
	CanSkip      bool
	AutoApprove  bool
	// AutoApproveAfterHours is the step's deadline in hours; only meaningful
	// when AutoApprove is set.
	AutoApproveAfterHours *int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Matches reports whether the workflow applies to a submission with the
// given scope. Nil workflow scopes match anything; an amount-scoped workflow
// never matches an amount-less submission.
func (w Workflow) Matches(departmentID, positionID *string, amount *decimal.Decimal) bool {
	if w.DepartmentID != nil {
		if departmentID == nil || *departmentID != *w.DepartmentID {
			return false
		}
	}
	if w.PositionID != nil {
		if positionID == nil || *positionID != *w.PositionID {
			return false
		}
	}
	if w.MinAmount != nil || w.MaxAmount != nil {
		if amount == nil {
			return false
		}
		if w.MinAmount != nil && amount.LessThan(*w.MinAmount) {
			return false
		}
		if w.MaxAmount != nil && amount.GreaterThan(*w.MaxAmount) {
			return false
		}
	}
	return true
}

// Specificity counts the organizational scopes a workflow carries. A
// workflow scoped to both department and position beats single-scoped beats
// unscoped during resolution.
func (w Workflow) Specificity() int {
	n := 0
	if w.DepartmentID != nil {
		n++
	}
	if w.PositionID != nil {
		n++
	}
	return n
}

// AmountRangeWidth returns the width of [MinAmount, MaxAmount]. The second
// return is false when either bound is open, meaning an effectively infinite
// range.
func (w Workflow) AmountRangeWidth() (decimal.Decimal, bool) {
	if w.MinAmount == nil || w.MaxAmount == nil {
		return decimal.Decimal{}, false
	}
	return w.MaxAmount.Sub(*w.MinAmount), true
}

// StepPastAutoApproveDeadline reports whether an auto-approving step has
// been waiting longer than its configured deadline. assignedAt is when the
// step's approver was assigned. Steps without auto-approval never pass.
func StepPastAutoApproveDeadline(step Step, assignedAt, now time.Time) bool {
	if !step.AutoApprove || step.AutoApproveAfterHours == nil {
		return false
	}
	if *step.AutoApproveAfterHours <= 0 {
		return false
	}
	deadline := assignedAt.Add(time.Duration(*step.AutoApproveAfterHours) * time.Hour)
	return now.After(deadline)
}

// DefaultSteps is the built-in two-level manager -> HR chain applied when no
// workflow matches a submission and the no-workflow policy is "default".
func DefaultSteps() []Step {
	return []Step{
		{StepOrder: 1, ApproverType: ApproverAnyManager, IsRequired: true},
		{StepOrder: 2, ApproverType: ApproverHRManager, IsRequired: true},
	}
}
