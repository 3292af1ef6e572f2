package payroll

import "context"

type Filter struct {
	EmployeeID  string
	PeriodMonth int
	PeriodYear  int
	Status      string
	Page        int
	Limit       int
}

type Repository interface {
	Create(ctx context.Context, rec *Record) (*Record, error)
	GetByID(ctx context.Context, id string) (*Record, error)
	// GetByIDForUpdate locks the row for the duration of the surrounding
	// transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*Record, error)
	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (*Record, error)
	List(ctx context.Context, filter Filter) ([]Record, int, error)
	// ExistsForPeriod reports whether a row already exists for the employee
	// and period, regardless of status.
	ExistsForPeriod(ctx context.Context, employeeID string, month, year int) (bool, error)
	SetStatus(ctx context.Context, id string, status Status) error
	// MarkPaid finalizes the row: recomputed figures, paid status, payer,
	// timestamp and the archived payslip path.
	MarkPaid(ctx context.Context, rec *Record) error
	SetPayslipPath(ctx context.Context, id string, path string) error
}
