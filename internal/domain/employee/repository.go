package employee

import "context"

type EmployeeRepository interface {
	Create(ctx context.Context, e *Employee) (*Employee, error)
	GetByID(ctx context.Context, id string) (*Employee, error)
	GetByCode(ctx context.Context, code string) (*Employee, error)
	List(ctx context.Context, filter ListFilter) ([]Employee, int, error)
	ListActive(ctx context.Context) ([]Employee, error)
	Update(ctx context.Context, e *Employee) error
	SetActive(ctx context.Context, id string, active bool) error
	// ExistsByCodeOrEmail reports whether another employee (excludeID may be
	// empty) already holds the code or email.
	ExistsByCodeOrEmail(ctx context.Context, code, email, excludeID string) (bool, error)
	// FirstActiveByPosition returns the earliest-hired active employee
	// holding the position, or nil when the position is vacant.
	FirstActiveByPosition(ctx context.Context, positionID string) (*Employee, error)
	// LockByID takes the employee's row lock for the rest of the
	// transaction. Submission flows lock it so per-employee checks
	// (overlaps, balances, open loans) serialize.
	LockByID(ctx context.Context, id string) error
}
