package user

import "time"

type Role string

const (
	RoleAdmin          Role = "admin"           // Full access, system administration
	RoleHRManager      Role = "hr_manager"      // People operations: employees, leave, shifts, reviews
	RoleFinanceManager Role = "finance_manager" // Payroll and loans
	RoleManager        Role = "manager"         // Line manager, approves team requests
	RoleEmployee       Role = "employee"        // Regular employee
)

// Roles lists every assignable role.
var Roles = []Role{RoleAdmin, RoleHRManager, RoleFinanceManager, RoleManager, RoleEmployee}

type User struct {
	ID           string
	Email        string
	PasswordHash *string
	Role         Role
	EmployeeID   *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is an external sign-in linked to a user (Google).
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	Email          string
	CreatedAt      time.Time
}

const ProviderGoogle = "google"

// IsAdmin checks if user has full administrative access
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsManagerial reports whether the user holds any managing role.
func (u *User) IsManagerial() bool {
	switch u.Role {
	case RoleAdmin, RoleHRManager, RoleFinanceManager, RoleManager:
		return true
	}
	return false
}
