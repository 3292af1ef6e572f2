package position

import "time"

// Position is a job title, optionally scoped to a department. Level orders
// positions within a hierarchy (higher means more senior).
type Position struct {
	ID           string
	Name         string
	DepartmentID *string
	Level        int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Joined fields, populated by list queries
	DepartmentName *string
}
