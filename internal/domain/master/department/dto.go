package department

import (
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/pkg/validator"
)

type DepartmentResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	BranchID       *string   `json:"branch_id,omitempty"`
	BranchName     *string   `json:"branch_name,omitempty"`
	HeadEmployeeID *string   `json:"head_employee_id,omitempty"`
	HeadName       *string   `json:"head_name,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

func ToResponse(d *Department) *DepartmentResponse {
	return &DepartmentResponse{
		ID:             d.ID,
		Name:           d.Name,
		BranchID:       d.BranchID,
		BranchName:     d.BranchName,
		HeadEmployeeID: d.HeadEmployeeID,
		HeadName:       d.HeadName,
		IsActive:       d.IsActive,
		CreatedAt:      d.CreatedAt,
	}
}

type CreateDepartmentRequest struct {
	Name           string  `json:"name"`
	BranchID       *string `json:"branch_id,omitempty"`
	HeadEmployeeID *string `json:"head_employee_id,omitempty"`
}

func (r *CreateDepartmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateDepartmentRequest struct {
	Name           *string `json:"name,omitempty"`
	BranchID       *string `json:"branch_id,omitempty"`
	HeadEmployeeID *string `json:"head_employee_id,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

func (r *UpdateDepartmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not be empty",
			})
		}
		if len(*r.Name) > 100 {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not exceed 100 characters",
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
