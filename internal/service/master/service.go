package master

import (
	"context"
	"errors"
	"fmt"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/branch"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/department"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/position"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
)

// defaultTimezone applies when a branch is created without one.
const defaultTimezone = "Asia/Jakarta"

const (
	auditEntityBranch     = "branch"
	auditEntityDepartment = "department"
	auditEntityPosition   = "position"
)

type masterServiceImpl struct {
	branches    branch.BranchRepository
	departments department.DepartmentRepository
	positions   position.PositionRepository
	employees   employee.EmployeeRepository
	auditor     audit.Recorder
}

func NewMasterService(
	branches branch.BranchRepository,
	departments department.DepartmentRepository,
	positions position.PositionRepository,
	employees employee.EmployeeRepository,
	auditor audit.Recorder,
) master.MasterService {
	return &masterServiceImpl{
		branches:    branches,
		departments: departments,
		positions:   positions,
		employees:   employees,
		auditor:     auditor,
	}
}

// ==================== BRANCH OPERATIONS ====================

func (s *masterServiceImpl) CreateBranch(ctx context.Context, actor user.Actor, req branch.CreateBranchRequest) (*branch.BranchResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionMasterManage) {
		return nil, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tz := req.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	created, err := s.branches.Create(ctx, &branch.Branch{
		Name:     req.Name,
		Address:  req.Address,
		Timezone: tz,
		IsActive: true,
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionCreate,
		EntityType: auditEntityBranch,
		EntityID:   created.ID,
		NewValues:  audit.Values{"name": created.Name, "timezone": created.Timezone},
	})

	return branch.ToResponse(created), nil
}

func (s *masterServiceImpl) GetBranch(ctx context.Context, actor user.Actor, id string) (*branch.BranchResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionMasterView) {
		return nil, user.ErrInsufficientPermissions
	}
	b, err := s.branches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return branch.ToResponse(b), nil
}

func (s *masterServiceImpl) ListBranches(ctx context.Context, actor user.Actor, activeOnly bool) ([]branch.BranchResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionMasterView) {
		return nil, user.ErrInsufficientPermissions
	}
	items, err := s.branches.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	responses := make([]branch.BranchResponse, 0, len(items))
	for i := range items {
		responses = append(responses, *branch.ToResponse(&items[i]))
	}
	return responses, nil
}

func (s *masterServiceImpl) UpdateBranch(ctx context.Context, actor user.Actor, id string, req branch.UpdateBranchRequest) (*branch.BranchResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionMasterManage) {
		return nil, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	b, err := s.branches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	old := audit.Values{"name": b.Name, "timezone": b.Timezone, "is_active": b.IsActive}

	// Deactivating through update obeys the same reference guard as delete.
	wantActive := b.IsActive
	if req.IsActive != nil {
		wantActive = *req.IsActive
	}
	if b.IsActive && !wantActive {
		if err := s.ensureBranchUnused(ctx, id); err != nil {
			return nil, err
		}
	}

	if req.Name != nil {
		b.Name = *req.Name
	}
	if req.Address != nil {
		b.Address = req.Address
	}
	if req.Timezone != nil {
		b.Timezone = *req.Timezone
	}
	if err := s.branches.Update(ctx, b); err != nil {
		return nil, err
	}
	if wantActive != b.IsActive {
		if err := s.branches.SetActive(ctx, id, wantActive); err != nil {
			return nil, err
		}
		b.IsActive = wantActive
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionUpdate,
		EntityType: auditEntityBranch,
		EntityID:   b.ID,
		OldValues:  old,
		NewValues:  audit.Values{"name": b.Name, "timezone": b.Timezone, "is_active": b.IsActive},
	})

	return branch.ToResponse(b), nil
}

// DeleteBranch deactivates the branch. Rows are never removed so historical
// records keep resolving; a branch still referenced by departments or
// employees cannot be deleted.
func (s *masterServiceImpl) DeleteBranch(ctx context.Context, actor user.Actor, id string) error {
	if !user.HasPermission(actor.Role, user.PermissionMasterManage) {
		return user.ErrInsufficientPermissions
	}
	b, err := s.branches.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !b.IsActive {
		return nil
	}
	if err := s.ensureBranchUnused(ctx, id); err != nil {
		return err
	}
	if err := s.branches.SetActive(ctx, id, false); err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionDelete,
		EntityType: auditEntityBranch,
		EntityID:   id,
		OldValues:  audit.Values{"is_active": true},
		NewValues:  audit.Values{"is_active": false},
	})
	return nil
}

func (s *masterServiceImpl) ensureBranchUnused(ctx context.Context, id string) error {
	inUse, err := s.branches.InUse(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check branch references: %w", err)
	}
	if inUse {
		return branch.ErrBranchInUse
	}
	return nil
}

// ==================== DEPARTMENT OPERATIONS ====================

func (s *masterServiceImpl) CreateDepartment(ctx context.Context, actor user.Actor, req department.CreateDepartmentRequest) (*department.DepartmentResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionMasterManage) {
		return nil, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkDepartmentRefs(ctx, req.BranchID, req.HeadEmployeeID); err != nil {
		return nil, err
	}

	created, err := s.departments.Create(ctx, &department.Department{
		Name:           req.Name,
		BranchID:       req.BranchID,
		HeadEmployeeID: req.HeadEmployeeID,
		IsActive:       true,
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionCreate,
		EntityType: auditEntityDepartment,
		EntityID:   created.ID,
		NewValues:  audit.Values{"name": created.Name, "branch_id": created.BranchID},
	})

	// Reload for the joined branch and head names.
	if full, err := s.departments.GetByID(ctx, created.ID); err == nil {
		return department.ToResponse(full), nil
	}
	return department.ToResponse(created), nil
}

func (s *masterServiceImpl) GetDepartment(ctx context.Context, actor user.Actor, id string) (*department.DepartmentResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionMasterView) {
		return nil, user.ErrInsufficientPermissions
	}
	d, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return department.ToResponse(d), nil
}

func (s *masterServiceImpl) ListDepartments(ctx context.Context, actor user.Actor, activeOnly bool) ([]department.DepartmentResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionMasterView) {
		return nil, user.ErrInsufficientPermissions
	}
	items, err := s.departments.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	responses := make([]department.DepartmentResponse, 0, len(items))
	for i := range items {
		responses = append(responses, *department.ToResponse(&items[i]))
	}
	return responses, nil
}

func (s *masterServiceImpl) UpdateDepartment(ctx context.Context, actor user.Actor, id string, req department.UpdateDepartmentRequest) (*department.DepartmentResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionMasterManage) {
		return nil, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	d, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkDepartmentRefs(ctx, req.BranchID, req.HeadEmployeeID); err != nil {
		return nil, err
	}

	old := audit.Values{
		"name":             d.Name,
		"branch_id":        d.BranchID,
		"head_employee_id": d.HeadEmployeeID,
		"is_active":        d.IsActive,
	}

	wantActive := d.IsActive
	if req.IsActive != nil {
		wantActive = *req.IsActive
	}
	if d.IsActive && !wantActive {
		if err := s.ensureDepartmentUnused(ctx, id); err != nil {
			return nil, err
		}
	}

	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.BranchID != nil {
		d.BranchID = req.BranchID
	}
	if req.HeadEmployeeID != nil {
		d.HeadEmployeeID = req.HeadEmployeeID
	}
	if err := s.departments.Update(ctx, d); err != nil {
		return nil, err
	}
	if wantActive != d.IsActive {
		if err := s.departments.SetActive(ctx, id, wantActive); err != nil {
			return nil, err
		}
		d.IsActive = wantActive
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionUpdate,
		EntityType: auditEntityDepartment,
		EntityID:   d.ID,
		OldValues:  old,
		NewValues: audit.Values{
			"name":             d.Name,
			"branch_id":        d.BranchID,
			"head_employee_id": d.HeadEmployeeID,
			"is_active":        d.IsActive,
		},
	})

	if full, err := s.departments.GetByID(ctx, d.ID); err == nil {
		return department.ToResponse(full), nil
	}
	return department.ToResponse(d), nil
}

func (s *masterServiceImpl) DeleteDepartment(ctx context.Context, actor user.Actor, id string) error {
	if !user.HasPermission(actor.Role, user.PermissionMasterManage) {
		return user.ErrInsufficientPermissions
	}
	d, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !d.IsActive {
		return nil
	}
	if err := s.ensureDepartmentUnused(ctx, id); err != nil {
		return err
	}
	if err := s.departments.SetActive(ctx, id, false); err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionDelete,
		EntityType: auditEntityDepartment,
		EntityID:   id,
		OldValues:  audit.Values{"is_active": true},
		NewValues:  audit.Values{"is_active": false},
	})
	return nil
}

// checkDepartmentRefs verifies the branch reference is an active branch and
// the head reference is a real employee. The head may be inactive; outgoing
// heads keep their name on the department until replaced.
func (s *masterServiceImpl) checkDepartmentRefs(ctx context.Context, branchID, headEmployeeID *string) error {
	if branchID != nil {
		b, err := s.branches.GetByID(ctx, *branchID)
		if err != nil {
			return err
		}
		if !b.IsActive {
			return branch.ErrBranchInactive
		}
	}
	if headEmployeeID != nil {
		if _, err := s.employees.GetByID(ctx, *headEmployeeID); err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return department.ErrHeadNotFound
			}
			return err
		}
	}
	return nil
}

func (s *masterServiceImpl) ensureDepartmentUnused(ctx context.Context, id string) error {
	inUse, err := s.departments.InUse(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check department references: %w", err)
	}
	if inUse {
		return department.ErrDepartmentInUse
	}
	return nil
}

// ==================== POSITION OPERATIONS ====================

func (s *masterServiceImpl) CreatePosition(ctx context.Context, actor user.Actor, req position.CreatePositionRequest) (*position.PositionResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionMasterManage) {
		return nil, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkPositionRefs(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	created, err := s.positions.Create(ctx, &position.Position{
		Name:         req.Name,
		DepartmentID: req.DepartmentID,
		Level:        req.Level,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionCreate,
		EntityType: auditEntityPosition,
		EntityID:   created.ID,
		NewValues:  audit.Values{"name": created.Name, "department_id": created.DepartmentID, "level": created.Level},
	})

	if full, err := s.positions.GetByID(ctx, created.ID); err == nil {
		return position.ToResponse(full), nil
	}
	return position.ToResponse(created), nil
}

func (s *masterServiceImpl) GetPosition(ctx context.Context, actor user.Actor, id string) (*position.PositionResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionMasterView) {
		return nil, user.ErrInsufficientPermissions
	}
	p, err := s.positions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return position.ToResponse(p), nil
}

func (s *masterServiceImpl) ListPositions(ctx context.Context, actor user.Actor, departmentID string, activeOnly bool) ([]position.PositionResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionMasterView) {
		return nil, user.ErrInsufficientPermissions
	}
	items, err := s.positions.List(ctx, departmentID, activeOnly)
	if err != nil {
		return nil, err
	}
	responses := make([]position.PositionResponse, 0, len(items))
	for i := range items {
		responses = append(responses, *position.ToResponse(&items[i]))
	}
	return responses, nil
}

func (s *masterServiceImpl) UpdatePosition(ctx context.Context, actor user.Actor, id string, req position.UpdatePositionRequest) (*position.PositionResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionMasterManage) {
		return nil, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := s.positions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkPositionRefs(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	old := audit.Values{
		"name":          p.Name,
		"department_id": p.DepartmentID,
		"level":         p.Level,
		"is_active":     p.IsActive,
	}

	wantActive := p.IsActive
	if req.IsActive != nil {
		wantActive = *req.IsActive
	}
	if p.IsActive && !wantActive {
		if err := s.ensurePositionUnused(ctx, id); err != nil {
			return nil, err
		}
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.DepartmentID != nil {
		p.DepartmentID = req.DepartmentID
	}
	if req.Level != nil {
		p.Level = *req.Level
	}
	if err := s.positions.Update(ctx, p); err != nil {
		return nil, err
	}
	if wantActive != p.IsActive {
		if err := s.positions.SetActive(ctx, id, wantActive); err != nil {
			return nil, err
		}
		p.IsActive = wantActive
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionUpdate,
		EntityType: auditEntityPosition,
		EntityID:   p.ID,
		OldValues:  old,
		NewValues: audit.Values{
			"name":          p.Name,
			"department_id": p.DepartmentID,
			"level":         p.Level,
			"is_active":     p.IsActive,
		},
	})

	if full, err := s.positions.GetByID(ctx, p.ID); err == nil {
		return position.ToResponse(full), nil
	}
	return position.ToResponse(p), nil
}

func (s *masterServiceImpl) DeletePosition(ctx context.Context, actor user.Actor, id string) error {
	if !user.HasPermission(actor.Role, user.PermissionMasterManage) {
		return user.ErrInsufficientPermissions
	}
	p, err := s.positions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return nil
	}
	if err := s.ensurePositionUnused(ctx, id); err != nil {
		return err
	}
	if err := s.positions.SetActive(ctx, id, false); err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionDelete,
		EntityType: auditEntityPosition,
		EntityID:   id,
		OldValues:  audit.Values{"is_active": true},
		NewValues:  audit.Values{"is_active": false},
	})
	return nil
}

func (s *masterServiceImpl) checkPositionRefs(ctx context.Context, departmentID *string) error {
	if departmentID == nil {
		return nil
	}
	d, err := s.departments.GetByID(ctx, *departmentID)
	if err != nil {
		return err
	}
	if !d.IsActive {
		return department.ErrDepartmentInactive
	}
	return nil
}

func (s *masterServiceImpl) ensurePositionUnused(ctx context.Context, id string) error {
	inUse, err := s.positions.InUse(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check position references: %w", err)
	}
	if inUse {
		return position.ErrPositionInUse
	}
	return nil
}
