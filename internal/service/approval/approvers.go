package approval

import (
	"context"
	"errors"
	"fmt"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/approval"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/department"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
)

// Directory resolves a workflow step to the concrete user who must approve,
// given the requester the submission belongs to.
type Directory struct {
	employees   employee.EmployeeRepository
	users       user.UserRepository
	departments department.DepartmentRepository
}

func NewDirectory(employees employee.EmployeeRepository, users user.UserRepository, departments department.DepartmentRepository) *Directory {
	return &Directory{
		employees:   employees,
		users:       users,
		departments: departments,
	}
}

// ResolveStepApprover returns the user ID of the step's approver. A step
// whose rule yields nobody (vacant position, missing manager with no
// fallback) resolves to ErrApproverUnresolved so the engine can skip or
// fail it.
func (d *Directory) ResolveStepApprover(ctx context.Context, step approval.Step, requesterEmployeeID string) (string, error) {
	switch step.ApproverType {
	case approval.ApproverSpecificUser:
		if step.ApproverID == nil || *step.ApproverID == "" {
			return "", approval.ErrApproverUnresolved
		}
		return *step.ApproverID, nil

	case approval.ApproverAnyManager:
		return d.resolveManager(ctx, requesterEmployeeID)

	case approval.ApproverDepartmentHead:
		return d.resolveDepartmentHead(ctx, step, requesterEmployeeID)

	case approval.ApproverPositionBased:
		return d.resolvePositionHolder(ctx, step)

	case approval.ApproverRoleBased:
		if step.RoleID == nil || *step.RoleID == "" {
			return "", approval.ErrApproverUnresolved
		}
		return d.firstUserWithRole(ctx, user.Role(*step.RoleID))

	case approval.ApproverHRManager:
		return d.firstUserWithRole(ctx, user.RoleHRManager)

	case approval.ApproverFinanceManager:
		return d.firstUserWithRole(ctx, user.RoleFinanceManager)
	}

	return "", approval.ErrApproverUnresolved
}

// resolveManager finds the requester's direct manager's user account. A
// requester without a manager falls back to the earliest manager-role user,
// then to HR, so the default chain still works in small orgs.
func (d *Directory) resolveManager(ctx context.Context, requesterEmployeeID string) (string, error) {
	emp, err := d.employees.GetByID(ctx, requesterEmployeeID)
	if err != nil {
		return "", fmt.Errorf("failed to load requester: %w", err)
	}

	if emp.ManagerID != nil {
		if uid, err := d.userForEmployee(ctx, *emp.ManagerID); err == nil {
			return uid, nil
		}
	}

	if uid, err := d.firstUserWithRole(ctx, user.RoleManager); err == nil {
		return uid, nil
	}
	return d.firstUserWithRole(ctx, user.RoleHRManager)
}

func (d *Directory) resolveDepartmentHead(ctx context.Context, step approval.Step, requesterEmployeeID string) (string, error) {
	departmentID := step.DepartmentID
	if departmentID == nil {
		emp, err := d.employees.GetByID(ctx, requesterEmployeeID)
		if err != nil {
			return "", fmt.Errorf("failed to load requester: %w", err)
		}
		departmentID = emp.DepartmentID
	}
	if departmentID == nil {
		return "", approval.ErrApproverUnresolved
	}

	dep, err := d.departments.GetByID(ctx, *departmentID)
	if err != nil {
		if errors.Is(err, department.ErrDepartmentNotFound) {
			return "", approval.ErrApproverUnresolved
		}
		return "", fmt.Errorf("failed to load department: %w", err)
	}
	if dep.HeadEmployeeID == nil {
		return "", approval.ErrApproverUnresolved
	}

	return d.userForEmployee(ctx, *dep.HeadEmployeeID)
}

func (d *Directory) resolvePositionHolder(ctx context.Context, step approval.Step) (string, error) {
	if step.PositionID == nil || *step.PositionID == "" {
		return "", approval.ErrApproverUnresolved
	}

	holder, err := d.employees.FirstActiveByPosition(ctx, *step.PositionID)
	if err != nil {
		return "", fmt.Errorf("failed to find position holder: %w", err)
	}
	if holder == nil {
		return "", approval.ErrApproverUnresolved
	}

	return d.userForEmployee(ctx, holder.ID)
}

func (d *Directory) userForEmployee(ctx context.Context, employeeID string) (string, error) {
	u, err := d.users.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", approval.ErrApproverUnresolved
		}
		return "", fmt.Errorf("failed to load approver account: %w", err)
	}
	if !u.IsActive {
		return "", approval.ErrApproverUnresolved
	}
	return u.ID, nil
}

func (d *Directory) firstUserWithRole(ctx context.Context, role user.Role) (string, error) {
	u, err := d.users.FirstActiveByRole(ctx, role)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", approval.ErrApproverUnresolved
		}
		return "", fmt.Errorf("failed to find %s user: %w", role, err)
	}
	return u.ID, nil
}
