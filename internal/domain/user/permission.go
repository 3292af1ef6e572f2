package user

type Permission string

const (
	// Self Management
	PermissionViewOwnProfile Permission = "profile.view_own"
	PermissionEditOwnProfile Permission = "profile.edit_own"

	// Employee Management
	PermissionEmployeeViewAll Permission = "employee.view_all"
	PermissionEmployeeManage  Permission = "employee.manage"

	// Master Data (branches, departments, positions)
	PermissionMasterView   Permission = "master.view"
	PermissionMasterManage Permission = "master.manage"

	// Leave Management
	PermissionLeaveViewOwn            Permission = "leave.view_own"
	PermissionLeaveCreate             Permission = "leave.create"
	PermissionLeaveViewAll            Permission = "leave.view_all"
	PermissionLeaveManageEntitlements Permission = "leave.manage_entitlements"

	// Loan Management
	PermissionLoanViewOwn  Permission = "loan.view_own"
	PermissionLoanCreate   Permission = "loan.create"
	PermissionLoanViewAll  Permission = "loan.view_all"
	PermissionLoanDisburse Permission = "loan.disburse"

	// Attendance Management
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceCreate  Permission = "attendance.create"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceManage  Permission = "attendance.manage"

	// Shift Management
	PermissionShiftView   Permission = "shift.view"
	PermissionShiftManage Permission = "shift.manage"

	// Payroll
	PermissionPayrollViewOwn Permission = "payroll.view_own"
	PermissionPayrollViewAll Permission = "payroll.view_all"
	PermissionPayrollManage  Permission = "payroll.manage"

	// Performance Reviews
	PermissionPerformanceViewOwn Permission = "performance.view_own"
	PermissionPerformanceViewAll Permission = "performance.view_all"
	PermissionPerformanceManage  Permission = "performance.manage"

	// Approval Workflow Administration
	PermissionWorkflowManage Permission = "workflow.manage"

	// Audit Trail
	PermissionAuditView Permission = "audit.view"

	// User Management
	PermissionUserManage Permission = "user.manage"
)

var selfServicePermissions = []Permission{
	PermissionViewOwnProfile,
	PermissionEditOwnProfile,
	PermissionLeaveViewOwn,
	PermissionLeaveCreate,
	PermissionLoanViewOwn,
	PermissionLoanCreate,
	PermissionAttendanceViewOwn,
	PermissionAttendanceCreate,
	PermissionShiftView,
	PermissionPayrollViewOwn,
	PermissionPerformanceViewOwn,
}

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: concat(selfServicePermissions, []Permission{
		PermissionEmployeeViewAll,
		PermissionEmployeeManage,
		PermissionMasterView,
		PermissionMasterManage,
		PermissionLeaveViewAll,
		PermissionLeaveManageEntitlements,
		PermissionLoanViewAll,
		PermissionLoanDisburse,
		PermissionAttendanceViewAll,
		PermissionAttendanceManage,
		PermissionShiftManage,
		PermissionPayrollViewAll,
		PermissionPayrollManage,
		PermissionPerformanceViewAll,
		PermissionPerformanceManage,
		PermissionWorkflowManage,
		PermissionAuditView,
		PermissionUserManage,
	}),
	RoleHRManager: concat(selfServicePermissions, []Permission{
		PermissionEmployeeViewAll,
		PermissionEmployeeManage,
		PermissionMasterView,
		PermissionMasterManage,
		PermissionLeaveViewAll,
		PermissionLeaveManageEntitlements,
		PermissionLoanViewAll,
		PermissionAttendanceViewAll,
		PermissionAttendanceManage,
		PermissionShiftManage,
		PermissionPayrollViewAll,
		PermissionPerformanceViewAll,
		PermissionPerformanceManage,
		PermissionWorkflowManage,
	}),
	RoleFinanceManager: concat(selfServicePermissions, []Permission{
		PermissionEmployeeViewAll,
		PermissionMasterView,
		PermissionLoanViewAll,
		PermissionLoanDisburse,
		PermissionPayrollViewAll,
		PermissionPayrollManage,
	}),
	RoleManager: concat(selfServicePermissions, []Permission{
		PermissionEmployeeViewAll,
		PermissionMasterView,
		PermissionLeaveViewAll,
		PermissionLoanViewAll,
		PermissionAttendanceViewAll,
		PermissionPerformanceViewAll,
		PermissionPerformanceManage,
	}),
	RoleEmployee: selfServicePermissions,
}

func concat(base []Permission, extra []Permission) []Permission {
	out := make([]Permission, 0, len(base)+len(extra))
	out = append(out, base...)
	out = append(out, extra...)
	return out
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}

// Actor is the authenticated principal acting on a resource, as carried in
// token claims.
type Actor struct {
	UserID     string
	EmployeeID *string
	Role       Role
}

// CanAccess decides access to a resource owned by ownerUserID: holders of
// allPerm may always act, holders of ownPerm only on their own records.
func CanAccess(actor Actor, ownPerm Permission, allPerm Permission, ownerUserID string) bool {
	if HasPermission(actor.Role, allPerm) {
		return true
	}
	return HasPermission(actor.Role, ownPerm) && actor.UserID == ownerUserID
}

// OwnsEmployee reports whether the actor's linked employee record is
// employeeID.
func (a Actor) OwnsEmployee(employeeID string) bool {
	return a.EmployeeID != nil && *a.EmployeeID == employeeID
}
