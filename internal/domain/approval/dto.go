package approval

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kelola-hr/hrm-backend-go/internal/pkg/validator"
)

// WorkflowResponse represents a workflow with its steps in API responses.
type WorkflowResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	EntityType   string           `json:"entity_type"`
	DepartmentID *string          `json:"department_id,omitempty"`
	PositionID   *string          `json:"position_id,omitempty"`
	MinAmount    *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount    *decimal.Decimal `json:"max_amount,omitempty"`
	IsActive     bool             `json:"is_active"`
	Settings     Settings         `json:"settings,omitempty"`
	Steps        []StepResponse   `json:"steps"`
	CreatedAt    string           `json:"created_at"`
	UpdatedAt    string           `json:"updated_at"`
}

// StepResponse represents one workflow step in API responses.
type StepResponse struct {
	ID                    string  `json:"id"`
	StepOrder             int     `json:"step_order"`
	ApproverType          string  `json:"approver_type"`
	ApproverID            *string `json:"approver_id,omitempty"`
	PositionID            *string `json:"position_id,omitempty"`
	RoleID                *string `json:"role_id,omitempty"`
	DepartmentID          *string `json:"department_id,omitempty"`
	IsRequired            bool    `json:"is_required"`
	CanDelegate           bool    `json:"can_delegate"`
	CanSkip               bool    `json:"can_skip"`
	AutoApprove           bool    `json:"auto_approve"`
	AutoApproveAfterHours *int    `json:"auto_approve_after_hours,omitempty"`
}

// ToResponse converts a Workflow entity into its API shape.
func (w Workflow) ToResponse() WorkflowResponse {
	steps := make([]StepResponse, len(w.Steps))
	for i, s := range w.Steps {
		steps[i] = StepResponse{
			ID:                    s.ID,
			StepOrder:             s.StepOrder,
			ApproverType:          string(s.ApproverType),
			ApproverID:            s.ApproverID,
			PositionID:            s.PositionID,
			RoleID:                s.RoleID,
			DepartmentID:          s.DepartmentID,
			IsRequired:            s.IsRequired,
			CanDelegate:           s.CanDelegate,
			CanSkip:               s.CanSkip,
			AutoApprove:           s.AutoApprove,
			AutoApproveAfterHours: s.AutoApproveAfterHours,
		}
	}
	return WorkflowResponse{
		ID:           w.ID,
		Name:         w.Name,
		EntityType:   string(w.EntityType),
		DepartmentID: w.DepartmentID,
		PositionID:   w.PositionID,
		MinAmount:    w.MinAmount,
		MaxAmount:    w.MaxAmount,
		IsActive:     w.IsActive,
		Settings:     w.Settings,
		Steps:        steps,
		CreatedAt:    w.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    w.UpdatedAt.Format(time.RFC3339),
	}
}

func validEntityTypeStrings() []string {
	out := make([]string, len(EntityTypes))
	for i, t := range EntityTypes {
		out[i] = string(t)
	}
	return out
}

func validApproverTypeStrings() []string {
	out := make([]string, len(ApproverTypes))
	for i, t := range ApproverTypes {
		out[i] = string(t)
	}
	return out
}

// StepRequest defines one step inside a workflow create/update payload.
type StepRequest struct {
	StepOrder             int     `json:"step_order"`
	ApproverType          string  `json:"approver_type"`
	ApproverID            *string `json:"approver_id,omitempty"`
	PositionID            *string `json:"position_id,omitempty"`
	RoleID                *string `json:"role_id,omitempty"`
	DepartmentID          *string `json:"department_id,omitempty"`
	IsRequired            *bool   `json:"is_required,omitempty"`
	CanDelegate           bool    `json:"can_delegate"`
	CanSkip               bool    `json:"can_skip"`
	AutoApprove           bool    `json:"auto_approve"`
	AutoApproveAfterHours *int    `json:"auto_approve_after_hours,omitempty"`
}

func (s *StepRequest) validate(idx int) validator.ValidationErrors {
	var errs validator.ValidationErrors
	field := func(name string) string { return fmt.Sprintf("steps[%d].%s", idx, name) }

	if s.StepOrder < 1 {
		errs = append(errs, validator.ValidationError{
			Field:   field("step_order"),
			Message: "step_order must be 1 or greater",
		})
	}

	if !validator.IsInSlice(s.ApproverType, validApproverTypeStrings()) {
		errs = append(errs, validator.ValidationError{
			Field:   field("approver_type"),
			Message: "invalid approver_type",
		})
		return errs
	}

	// Approver-type specific requirements.
	switch ApproverType(s.ApproverType) {
	case ApproverSpecificUser:
		if s.ApproverID == nil || validator.IsEmpty(*s.ApproverID) {
			errs = append(errs, validator.ValidationError{
				Field:   field("approver_id"),
				Message: "approver_id is required for specific_user steps",
			})
		}
	case ApproverPositionBased:
		if s.PositionID == nil || validator.IsEmpty(*s.PositionID) {
			errs = append(errs, validator.ValidationError{
				Field:   field("position_id"),
				Message: "position_id is required for position_based steps",
			})
		}
	case ApproverRoleBased:
		if s.RoleID == nil || validator.IsEmpty(*s.RoleID) {
			errs = append(errs, validator.ValidationError{
				Field:   field("role_id"),
				Message: "role_id is required for role_based steps",
			})
		}
	}

	if s.AutoApprove {
		if s.AutoApproveAfterHours == nil || *s.AutoApproveAfterHours < 1 {
			errs = append(errs, validator.ValidationError{
				Field:   field("auto_approve_after_hours"),
				Message: "auto_approve_after_hours must be at least 1 when auto_approve is set",
			})
		}
	}

	return errs
}

// CreateWorkflowRequest creates a workflow together with its ordered steps.
type CreateWorkflowRequest struct {
	Name         string           `json:"name"`
	EntityType   string           `json:"entity_type"`
	DepartmentID *string          `json:"department_id,omitempty"`
	PositionID   *string          `json:"position_id,omitempty"`
	MinAmount    *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount    *decimal.Decimal `json:"max_amount,omitempty"`
	IsActive     *bool            `json:"is_active,omitempty"`
	Settings     Settings         `json:"settings,omitempty"`
	Steps        []StepRequest    `json:"steps"`
}

func (r *CreateWorkflowRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 150 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 150 characters",
		})
	}

	if !validator.IsInSlice(r.EntityType, validEntityTypeStrings()) {
		errs = append(errs, validator.ValidationError{
			Field:   "entity_type",
			Message: "invalid entity_type",
		})
	}

	if r.MinAmount != nil && r.MinAmount.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "min_amount",
			Message: "min_amount must not be negative",
		})
	}
	if r.MaxAmount != nil && r.MaxAmount.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "max_amount",
			Message: "max_amount must not be negative",
		})
	}
	if r.MinAmount != nil && r.MaxAmount != nil && r.MaxAmount.LessThan(*r.MinAmount) {
		errs = append(errs, validator.ValidationError{
			Field:   "max_amount",
			Message: "max_amount must not be less than min_amount",
		})
	}

	if len(r.Steps) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "steps",
			Message: "at least one step is required",
		})
	}

	seen := make(map[int]bool, len(r.Steps))
	for i := range r.Steps {
		errs = append(errs, r.Steps[i].validate(i)...)
		if seen[r.Steps[i].StepOrder] {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("steps[%d].step_order", i),
				Message: "step_order must be unique within the workflow",
			})
		}
		seen[r.Steps[i].StepOrder] = true
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateWorkflowRequest replaces a workflow's definition. Steps, when
// present, replace the existing step list wholesale.
type UpdateWorkflowRequest struct {
	ID           string           `json:"-"`
	Name         *string          `json:"name,omitempty"`
	DepartmentID *string          `json:"department_id,omitempty"`
	PositionID   *string          `json:"position_id,omitempty"`
	MinAmount    *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount    *decimal.Decimal `json:"max_amount,omitempty"`
	IsActive     *bool            `json:"is_active,omitempty"`
	Settings     Settings         `json:"settings,omitempty"`
	Steps        []StepRequest    `json:"steps,omitempty"`
}

func (r *UpdateWorkflowRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not be empty",
		})
	}

	if r.MinAmount != nil && r.MaxAmount != nil && r.MaxAmount.LessThan(*r.MinAmount) {
		errs = append(errs, validator.ValidationError{
			Field:   "max_amount",
			Message: "max_amount must not be less than min_amount",
		})
	}

	seen := make(map[int]bool, len(r.Steps))
	for i := range r.Steps {
		errs = append(errs, r.Steps[i].validate(i)...)
		if seen[r.Steps[i].StepOrder] {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("steps[%d].step_order", i),
				Message: "step_order must be unique within the workflow",
			})
		}
		seen[r.Steps[i].StepOrder] = true
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ResolveRequest is the dry-run resolution payload: which workflow would
// govern a submission with this scope.
type ResolveRequest struct {
	EntityType   string           `json:"entity_type"`
	DepartmentID *string          `json:"department_id,omitempty"`
	PositionID   *string          `json:"position_id,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
}

func (r *ResolveRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.EntityType, validEntityTypeStrings()) {
		errs = append(errs, validator.ValidationError{
			Field:   "entity_type",
			Message: "invalid entity_type",
		})
	}

	if r.Amount != nil && r.Amount.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "amount",
			Message: "amount must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ResolveResponse reports the dry-run outcome. Workflow is nil when no
// definition matched; Policy then tells the caller what a submission would
// do (default chain, auto-approve, or reject).
type ResolveResponse struct {
	Matched  bool              `json:"matched"`
	Policy   string            `json:"policy,omitempty"`
	Workflow *WorkflowResponse `json:"workflow,omitempty"`
	Steps    []StepResponse    `json:"steps,omitempty"`
}
