package user

import (
	"context"
)

type UserRepository interface {
	Create(ctx context.Context, newUser User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (User, error)
	List(ctx context.Context, filter ListFilter) ([]User, int64, error)
	Update(ctx context.Context, req UpdateUserRequest) error
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
	// FirstActiveByRole returns the earliest-created active user holding
	// role. Used for role-based approver resolution.
	FirstActiveByRole(ctx context.Context, role Role) (User, error)
	CountAll(ctx context.Context) (int64, error)
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Role     string
	IsActive *bool
	Search   string
	Page     int
	Limit    int
}

type IdentityRepository interface {
	Create(ctx context.Context, identity Identity) (Identity, error)
	GetByProvider(ctx context.Context, provider string, providerUserID string) (Identity, error)
	ListByUser(ctx context.Context, userID string) ([]Identity, error)
}
