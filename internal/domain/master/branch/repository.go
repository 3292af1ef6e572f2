package branch

import "context"

type BranchRepository interface {
	Create(ctx context.Context, b *Branch) (*Branch, error)
	GetByID(ctx context.Context, id string) (*Branch, error)
	GetByName(ctx context.Context, name string) (*Branch, error)
	List(ctx context.Context, activeOnly bool) ([]Branch, error)
	Update(ctx context.Context, b *Branch) error
	SetActive(ctx context.Context, id string, active bool) error
	// InUse reports whether any department or employee references the branch.
	InUse(ctx context.Context, id string) (bool, error)
}
