package shift

import (
	"context"
	"time"
)

type AssignmentFilter struct {
	EmployeeID string
	ShiftID    string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	Limit      int
}

type Repository interface {
	Create(ctx context.Context, s *Shift) (*Shift, error)
	GetByID(ctx context.Context, id string) (*Shift, error)
	GetByName(ctx context.Context, name string) (*Shift, error)
	List(ctx context.Context, activeOnly bool) ([]Shift, error)
	Update(ctx context.Context, s *Shift) error
	Delete(ctx context.Context, id string) error
	HasAssignments(ctx context.Context, shiftID string) (bool, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, a *Assignment) (*Assignment, error)
	GetByID(ctx context.Context, id string) (*Assignment, error)
	// GetByEmployeeAndDate returns nil when the employee has no shift that
	// day.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time) (*Assignment, error)
	List(ctx context.Context, filter AssignmentFilter) ([]Assignment, int, error)
	Delete(ctx context.Context, id string) error
}
