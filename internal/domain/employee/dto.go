package employee

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kelola-hr/hrm-backend-go/internal/pkg/validator"
)

// EmployeeResponse represents employee data in API responses
type EmployeeResponse struct {
	ID             string          `json:"id"`
	EmployeeCode   string          `json:"employee_code"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	FullName       string          `json:"full_name"`
	Email          string          `json:"email"`
	Phone          *string         `json:"phone,omitempty"`
	HireDate       string          `json:"hire_date"`
	DepartmentID   *string         `json:"department_id,omitempty"`
	DepartmentName *string         `json:"department_name,omitempty"`
	PositionID     *string         `json:"position_id,omitempty"`
	PositionName   *string         `json:"position_name,omitempty"`
	BranchID       *string         `json:"branch_id,omitempty"`
	BranchName     *string         `json:"branch_name,omitempty"`
	ManagerID      *string         `json:"manager_id,omitempty"`
	BaseSalary     decimal.Decimal `json:"base_salary"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

// ToResponse converts an Employee entity into its API shape.
func (e Employee) ToResponse() EmployeeResponse {
	return EmployeeResponse{
		ID:             e.ID,
		EmployeeCode:   e.EmployeeCode,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		FullName:       e.FullName(),
		Email:          e.Email,
		Phone:          e.Phone,
		HireDate:       e.HireDate.Format("2006-01-02"),
		DepartmentID:   e.DepartmentID,
		DepartmentName: e.DepartmentName,
		PositionID:     e.PositionID,
		PositionName:   e.PositionName,
		BranchID:       e.BranchID,
		BranchName:     e.BranchName,
		ManagerID:      e.ManagerID,
		BaseSalary:     e.BaseSalary,
		IsActive:       e.IsActive,
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      e.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateEmployeeRequest represents request to create an employee
type CreateEmployeeRequest struct {
	EmployeeCode string          `json:"employee_code"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Email        string          `json:"email"`
	Phone        *string         `json:"phone,omitempty"`
	HireDate     string          `json:"hire_date"`
	DepartmentID *string         `json:"department_id,omitempty"`
	PositionID   *string         `json:"position_id,omitempty"`
	BranchID     *string         `json:"branch_id,omitempty"`
	ManagerID    *string         `json:"manager_id,omitempty"`
	BaseSalary   decimal.Decimal `json:"base_salary"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_code",
			Message: "employee_code is required",
		})
	} else if !validator.IsValidEmployeeCode(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_code",
			Message: "employee_code must look like EMP-0001",
		})
	}

	if validator.IsEmpty(r.FirstName) {
		errs = append(errs, validator.ValidationError{
			Field:   "first_name",
			Message: "first_name is required",
		})
	}
	if len(r.FirstName) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "first_name",
			Message: "first_name must not exceed 100 characters",
		})
	}
	if len(r.LastName) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "last_name",
			Message: "last_name must not exceed 100 characters",
		})
	}

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		})
	}

	if r.Phone != nil && !validator.IsValidPhoneNumber(*r.Phone) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone",
			Message: "invalid phone number",
		})
	}

	if validator.IsEmpty(r.HireDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "hire_date",
			Message: "hire_date is required",
		})
	} else if _, ok := validator.IsValidDate(r.HireDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "hire_date",
			Message: "hire_date must be in YYYY-MM-DD format",
		})
	}

	if r.BaseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "base_salary",
			Message: "base_salary must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateEmployeeRequest represents request to update an employee
type UpdateEmployeeRequest struct {
	ID           string           `json:"-"`
	FirstName    *string          `json:"first_name,omitempty"`
	LastName     *string          `json:"last_name,omitempty"`
	Email        *string          `json:"email,omitempty"`
	Phone        *string          `json:"phone,omitempty"`
	DepartmentID *string          `json:"department_id,omitempty"`
	PositionID   *string          `json:"position_id,omitempty"`
	BranchID     *string          `json:"branch_id,omitempty"`
	ManagerID    *string          `json:"manager_id,omitempty"`
	BaseSalary   *decimal.Decimal `json:"base_salary,omitempty"`
	IsActive     *bool            `json:"is_active,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.FirstName != nil && validator.IsEmpty(*r.FirstName) {
		errs = append(errs, validator.ValidationError{
			Field:   "first_name",
			Message: "first_name must not be empty",
		})
	}

	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		})
	}

	if r.Phone != nil && !validator.IsValidPhoneNumber(*r.Phone) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone",
			Message: "invalid phone number",
		})
	}

	if r.BaseSalary != nil && r.BaseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "base_salary",
			Message: "base_salary must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ListFilter narrows employee listings. Zero values mean "no filter".
type ListFilter struct {
	DepartmentID string
	PositionID   string
	BranchID     string
	IsActive     *bool
	Search       string
	Page         int
	Limit        int
}
