package leave

import (
	"context"
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/approval"
)

// RequestRepository persists leave requests. It doubles as the approval
// engine's TargetStore and the auto-approve sweep's PendingScanner.
type RequestRepository interface {
	Create(ctx context.Context, request Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	List(ctx context.Context, filter RequestFilter) ([]Request, int64, error)
	// ListOverlapping returns every non-terminal (pending or approved)
	// request of the employee whose inclusive date range intersects
	// [start, end], excluding excludeID when given.
	ListOverlapping(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) ([]Request, error)
	// SumDaysByTypeInYear totals total_days per leave type for requests in
	// the given statuses whose start_date falls in the year.
	SumDaysByTypeInYear(ctx context.Context, employeeID string, year int, statuses []Status) (map[Type]float64, error)

	approval.TargetStore
	approval.PendingScanner
}

// RequestFilter narrows request listings. Zero values mean "no filter".
type RequestFilter struct {
	EmployeeID        string
	Type              string
	Status            string
	CurrentApproverID string
	StartDate         *time.Time
	EndDate           *time.Time
	Page              int
	Limit             int
}

// EntitlementRepository stores the annual allowance per leave type. It is
// the provider behind balance computation.
type EntitlementRepository interface {
	List(ctx context.Context) ([]Entitlement, error)
	GetByType(ctx context.Context, leaveType Type) (Entitlement, error)
	Upsert(ctx context.Context, entitlement Entitlement) (Entitlement, error)
}
