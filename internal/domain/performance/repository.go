package performance

import "context"

type Filter struct {
	EmployeeID string
	ReviewerID string
	PeriodYear int
	Status     string
	Page       int
	Limit      int
}

type Repository interface {
	Create(ctx context.Context, r *Review) (*Review, error)
	GetByID(ctx context.Context, id string) (*Review, error)
	List(ctx context.Context, filter Filter) ([]Review, int, error)
	ExistsForPeriod(ctx context.Context, employeeID string, year int, quarter *int) (bool, error)
	Update(ctx context.Context, r *Review) error
	// SetStatus transitions the review, stamping submitted_at or
	// acknowledged_at to match. The guard on the current status makes the
	// transition race-safe; false means the row was not in fromStatus.
	SetStatus(ctx context.Context, id string, from, to Status) (bool, error)
	Delete(ctx context.Context, id string) error
}
