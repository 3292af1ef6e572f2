package employee

import (
	"context"
	"errors"
	"fmt"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/branch"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/department"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/position"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/validator"
)

const auditEntityEmployee = "employee"

type employeeServiceImpl struct {
	employees   employee.EmployeeRepository
	departments department.DepartmentRepository
	positions   position.PositionRepository
	branches    branch.BranchRepository
	auditor     audit.Recorder
}

func NewEmployeeService(
	employees employee.EmployeeRepository,
	departments department.DepartmentRepository,
	positions position.PositionRepository,
	branches branch.BranchRepository,
	auditor audit.Recorder,
) employee.EmployeeService {
	return &employeeServiceImpl{
		employees:   employees,
		departments: departments,
		positions:   positions,
		branches:    branches,
		auditor:     auditor,
	}
}

func (s *employeeServiceImpl) Create(ctx context.Context, actor user.Actor, req employee.CreateEmployeeRequest) (*employee.EmployeeResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionEmployeeManage) {
		return nil, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	hireDate, _ := validator.IsValidDate(req.HireDate)

	if err := s.checkReferences(ctx, req.DepartmentID, req.PositionID, req.BranchID); err != nil {
		return nil, err
	}
	if req.ManagerID != nil {
		if _, err := s.employees.GetByID(ctx, *req.ManagerID); err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return nil, employee.ErrManagerNotFound
			}
			return nil, err
		}
	}

	emp := &employee.Employee{
		EmployeeCode: req.EmployeeCode,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		HireDate:     hireDate,
		DepartmentID: req.DepartmentID,
		PositionID:   req.PositionID,
		BranchID:     req.BranchID,
		ManagerID:    req.ManagerID,
		BaseSalary:   req.BaseSalary,
		IsActive:     true,
	}
	// Unique constraints on code and email backstop concurrent creates.
	emp, err := s.employees.Create(ctx, emp)
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionCreate,
		EntityType: auditEntityEmployee,
		EntityID:   emp.ID,
		NewValues: audit.Values{
			"employee_code": emp.EmployeeCode,
			"email":         emp.Email,
			"hire_date":     req.HireDate,
		},
	})

	// Reload for the joined department/position/branch names.
	full, err := s.employees.GetByID(ctx, emp.ID)
	if err != nil {
		resp := emp.ToResponse()
		return &resp, nil
	}
	resp := full.ToResponse()
	return &resp, nil
}

func (s *employeeServiceImpl) Get(ctx context.Context, actor user.Actor, id string) (*employee.EmployeeResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionEmployeeViewAll) && !actor.OwnsEmployee(id) {
		return nil, user.ErrInsufficientPermissions
	}

	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := emp.ToResponse()
	return &resp, nil
}

func (s *employeeServiceImpl) List(ctx context.Context, actor user.Actor, filter employee.ListFilter) ([]employee.EmployeeResponse, int, error) {
	if !user.HasPermission(actor.Role, user.PermissionEmployeeViewAll) {
		return nil, 0, user.ErrInsufficientPermissions
	}

	employees, total, err := s.employees.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, len(employees))
	for i := range employees {
		responses[i] = employees[i].ToResponse()
	}
	return responses, total, nil
}

func (s *employeeServiceImpl) Update(ctx context.Context, actor user.Actor, req employee.UpdateEmployeeRequest) (*employee.EmployeeResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionEmployeeManage) {
		return nil, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	emp, err := s.employees.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	old := audit.Values{
		"email":         emp.Email,
		"department_id": emp.DepartmentID,
		"position_id":   emp.PositionID,
		"branch_id":     emp.BranchID,
		"manager_id":    emp.ManagerID,
		"base_salary":   emp.BaseSalary.String(),
		"is_active":     emp.IsActive,
	}

	if err := s.checkReferences(ctx, req.DepartmentID, req.PositionID, req.BranchID); err != nil {
		return nil, err
	}
	if req.ManagerID != nil {
		if *req.ManagerID == emp.ID {
			return nil, employee.ErrSelfManager
		}
		if _, err := s.employees.GetByID(ctx, *req.ManagerID); err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return nil, employee.ErrManagerNotFound
			}
			return nil, err
		}
	}

	wantActive := emp.IsActive
	if req.IsActive != nil {
		wantActive = *req.IsActive
		if !wantActive && actor.OwnsEmployee(emp.ID) {
			return nil, employee.ErrCannotDeactivateSelf
		}
	}

	if req.FirstName != nil {
		emp.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		emp.LastName = *req.LastName
	}
	if req.Email != nil {
		emp.Email = *req.Email
	}
	if req.Phone != nil {
		emp.Phone = req.Phone
	}
	if req.DepartmentID != nil {
		emp.DepartmentID = req.DepartmentID
	}
	if req.PositionID != nil {
		emp.PositionID = req.PositionID
	}
	if req.BranchID != nil {
		emp.BranchID = req.BranchID
	}
	if req.ManagerID != nil {
		emp.ManagerID = req.ManagerID
	}
	if req.BaseSalary != nil {
		emp.BaseSalary = *req.BaseSalary
	}

	if err := s.employees.Update(ctx, emp); err != nil {
		return nil, err
	}

	if wantActive != emp.IsActive {
		if err := s.employees.SetActive(ctx, emp.ID, wantActive); err != nil {
			return nil, err
		}
		emp.IsActive = wantActive
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionUpdate,
		EntityType: auditEntityEmployee,
		EntityID:   emp.ID,
		OldValues:  old,
		NewValues: audit.Values{
			"email":         emp.Email,
			"department_id": emp.DepartmentID,
			"position_id":   emp.PositionID,
			"branch_id":     emp.BranchID,
			"manager_id":    emp.ManagerID,
			"base_salary":   emp.BaseSalary.String(),
			"is_active":     emp.IsActive,
		},
	})

	full, err := s.employees.GetByID(ctx, emp.ID)
	if err != nil {
		resp := emp.ToResponse()
		return &resp, nil
	}
	resp := full.ToResponse()
	return &resp, nil
}

func (s *employeeServiceImpl) Deactivate(ctx context.Context, actor user.Actor, id string) error {
	if !user.HasPermission(actor.Role, user.PermissionEmployeeManage) {
		return user.ErrInsufficientPermissions
	}
	if actor.OwnsEmployee(id) {
		return employee.ErrCannotDeactivateSelf
	}

	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !emp.IsActive {
		return nil
	}

	if err := s.employees.SetActive(ctx, id, false); err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     "deactivate",
		EntityType: auditEntityEmployee,
		EntityID:   id,
		OldValues:  audit.Values{"is_active": true},
		NewValues:  audit.Values{"is_active": false},
	})
	return nil
}

func (s *employeeServiceImpl) Activate(ctx context.Context, actor user.Actor, id string) error {
	if !user.HasPermission(actor.Role, user.PermissionEmployeeManage) {
		return user.ErrInsufficientPermissions
	}

	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if emp.IsActive {
		return nil
	}

	if err := s.employees.SetActive(ctx, id, true); err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     "activate",
		EntityType: auditEntityEmployee,
		EntityID:   id,
		OldValues:  audit.Values{"is_active": false},
		NewValues:  audit.Values{"is_active": true},
	})
	return nil
}

// checkReferences verifies that the assigned masters exist and are active.
func (s *employeeServiceImpl) checkReferences(ctx context.Context, departmentID, positionID, branchID *string) error {
	if departmentID != nil {
		d, err := s.departments.GetByID(ctx, *departmentID)
		if err != nil {
			return err
		}
		if !d.IsActive {
			return department.ErrDepartmentInactive
		}
	}
	if positionID != nil {
		p, err := s.positions.GetByID(ctx, *positionID)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return position.ErrPositionInactive
		}
	}
	if branchID != nil {
		b, err := s.branches.GetByID(ctx, *branchID)
		if err != nil {
			return err
		}
		if !b.IsActive {
			return branch.ErrBranchInactive
		}
	}
	return nil
}
