package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID           string
	EmployeeCode string
	FirstName    string
	LastName     string
	Email        string
	Phone        *string
	HireDate     time.Time
	DepartmentID *string
	PositionID   *string
	BranchID     *string
	ManagerID    *string
	BaseSalary   decimal.Decimal
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Joined fields, populated by list/detail queries
	DepartmentName *string
	PositionName   *string
	BranchName     *string
}

func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
