package department

import "time"

type Department struct {
	ID             string
	Name           string
	BranchID       *string
	HeadEmployeeID *string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Joined fields, populated by list queries
	BranchName *string
	HeadName   *string
}
