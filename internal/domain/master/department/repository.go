package department

import "context"

type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) (*Department, error)
	GetByID(ctx context.Context, id string) (*Department, error)
	GetByName(ctx context.Context, name string) (*Department, error)
	List(ctx context.Context, activeOnly bool) ([]Department, error)
	Update(ctx context.Context, d *Department) error
	SetActive(ctx context.Context, id string, active bool) error
	InUse(ctx context.Context, id string) (bool, error)
}
