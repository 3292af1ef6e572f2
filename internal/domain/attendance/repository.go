package attendance

import (
	"context"
	"time"
)

type Filter struct {
	EmployeeID string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	Limit      int
}

type Repository interface {
	Create(ctx context.Context, a *Attendance) (*Attendance, error)
	GetByID(ctx context.Context, id string) (*Attendance, error)
	// GetByEmployeeAndDate returns nil when no row exists for the pair.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)
	Update(ctx context.Context, a *Attendance) error
	List(ctx context.Context, filter Filter) ([]Attendance, int, error)
	// ListOpenBefore returns attendances with no check-out dated strictly
	// before the given date. The auto-close job feeds on this.
	ListOpenBefore(ctx context.Context, date time.Time) ([]Attendance, error)
	// SummarizeOvertime sums overtime hours per employee for a period.
	SummarizeOvertime(ctx context.Context, month, year int) (map[string]float64, error)
}
