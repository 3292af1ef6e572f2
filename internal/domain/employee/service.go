package employee

import (
	"context"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
)

type EmployeeService interface {
	Create(ctx context.Context, actor user.Actor, req CreateEmployeeRequest) (*EmployeeResponse, error)
	Get(ctx context.Context, actor user.Actor, id string) (*EmployeeResponse, error)
	List(ctx context.Context, actor user.Actor, filter ListFilter) ([]EmployeeResponse, int, error)
	Update(ctx context.Context, actor user.Actor, req UpdateEmployeeRequest) (*EmployeeResponse, error)
	// Deactivate soft-deletes: the row stays, is_active drops.
	Deactivate(ctx context.Context, actor user.Actor, id string) error
	Activate(ctx context.Context, actor user.Actor, id string) error
}
