package position

import "context"

type PositionRepository interface {
	Create(ctx context.Context, p *Position) (*Position, error)
	GetByID(ctx context.Context, id string) (*Position, error)
	List(ctx context.Context, departmentID string, activeOnly bool) ([]Position, error)
	Update(ctx context.Context, p *Position) error
	SetActive(ctx context.Context, id string, active bool) error
	InUse(ctx context.Context, id string) (bool, error)
}
