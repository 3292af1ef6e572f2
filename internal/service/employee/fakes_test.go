package employee

import (
	"context"
	"fmt"
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/branch"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/department"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/position"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// ---- employee repository ----

type fakeEmployeeRepo struct {
	employees []*employee.Employee
	nextID    int
}

func (f *fakeEmployeeRepo) Create(_ context.Context, e *employee.Employee) (*employee.Employee, error) {
	for _, existing := range f.employees {
		if existing.EmployeeCode == e.EmployeeCode {
			return nil, employee.ErrEmployeeCodeExists
		}
		if existing.Email == e.Email {
			return nil, employee.ErrEmailExists
		}
	}
	f.nextID++
	e.ID = fmt.Sprintf("emp-%d", f.nextID)
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	f.employees = append(f.employees, e)
	return e, nil
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (*employee.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id {
			copied := *e
			return &copied, nil
		}
	}
	return nil, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) GetByCode(_ context.Context, code string) (*employee.Employee, error) {
	for _, e := range f.employees {
		if e.EmployeeCode == code {
			copied := *e
			return &copied, nil
		}
	}
	return nil, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) List(_ context.Context, filter employee.ListFilter) ([]employee.Employee, int, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		if filter.DepartmentID != "" && (e.DepartmentID == nil || *e.DepartmentID != filter.DepartmentID) {
			continue
		}
		if filter.BranchID != "" && (e.BranchID == nil || *e.BranchID != filter.BranchID) {
			continue
		}
		if filter.IsActive != nil && e.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (f *fakeEmployeeRepo) ListActive(_ context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		if e.IsActive {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) Update(_ context.Context, e *employee.Employee) error {
	for _, existing := range f.employees {
		if existing.ID != e.ID && existing.Email == e.Email {
			return employee.ErrEmailExists
		}
	}
	for i := range f.employees {
		if f.employees[i].ID == e.ID {
			// The UPDATE statement never touches is_active.
			copied := *e
			copied.IsActive = f.employees[i].IsActive
			copied.UpdatedAt = time.Now()
			f.employees[i] = &copied
			return nil
		}
	}
	return employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) SetActive(_ context.Context, id string, active bool) error {
	for _, e := range f.employees {
		if e.ID == id {
			e.IsActive = active
			return nil
		}
	}
	return employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) ExistsByCodeOrEmail(_ context.Context, code, email, excludeID string) (bool, error) {
	for _, e := range f.employees {
		if e.ID == excludeID {
			continue
		}
		if e.EmployeeCode == code || e.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEmployeeRepo) FirstActiveByPosition(_ context.Context, positionID string) (*employee.Employee, error) {
	for _, e := range f.employees {
		if e.IsActive && e.PositionID != nil && *e.PositionID == positionID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeEmployeeRepo) LockByID(_ context.Context, id string) error {
	for _, e := range f.employees {
		if e.ID == id {
			return nil
		}
	}
	return employee.ErrEmployeeNotFound
}

// ---- master repositories ----

type fakeDepartmentRepo struct {
	departments []*department.Department
}

func (f *fakeDepartmentRepo) Create(_ context.Context, d *department.Department) (*department.Department, error) {
	f.departments = append(f.departments, d)
	return d, nil
}

func (f *fakeDepartmentRepo) GetByID(_ context.Context, id string) (*department.Department, error) {
	for _, d := range f.departments {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, department.ErrDepartmentNotFound
}

func (f *fakeDepartmentRepo) GetByName(_ context.Context, name string) (*department.Department, error) {
	for _, d := range f.departments {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, department.ErrDepartmentNotFound
}

func (f *fakeDepartmentRepo) List(_ context.Context, activeOnly bool) ([]department.Department, error) {
	var out []department.Department
	for _, d := range f.departments {
		if activeOnly && !d.IsActive {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDepartmentRepo) Update(_ context.Context, d *department.Department) error { return nil }

func (f *fakeDepartmentRepo) SetActive(_ context.Context, id string, active bool) error {
	for _, d := range f.departments {
		if d.ID == id {
			d.IsActive = active
			return nil
		}
	}
	return department.ErrDepartmentNotFound
}

func (f *fakeDepartmentRepo) InUse(_ context.Context, _ string) (bool, error) { return false, nil }

type fakePositionRepo struct {
	positions []*position.Position
}

func (f *fakePositionRepo) Create(_ context.Context, p *position.Position) (*position.Position, error) {
	f.positions = append(f.positions, p)
	return p, nil
}

func (f *fakePositionRepo) GetByID(_ context.Context, id string) (*position.Position, error) {
	for _, p := range f.positions {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, position.ErrPositionNotFound
}

func (f *fakePositionRepo) List(_ context.Context, departmentID string, activeOnly bool) ([]position.Position, error) {
	var out []position.Position
	for _, p := range f.positions {
		if departmentID != "" && (p.DepartmentID == nil || *p.DepartmentID != departmentID) {
			continue
		}
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePositionRepo) Update(_ context.Context, p *position.Position) error { return nil }

func (f *fakePositionRepo) SetActive(_ context.Context, id string, active bool) error {
	for _, p := range f.positions {
		if p.ID == id {
			p.IsActive = active
			return nil
		}
	}
	return position.ErrPositionNotFound
}

func (f *fakePositionRepo) InUse(_ context.Context, _ string) (bool, error) { return false, nil }

type fakeBranchRepo struct {
	branches []*branch.Branch
}

func (f *fakeBranchRepo) Create(_ context.Context, b *branch.Branch) (*branch.Branch, error) {
	f.branches = append(f.branches, b)
	return b, nil
}

func (f *fakeBranchRepo) GetByID(_ context.Context, id string) (*branch.Branch, error) {
	for _, b := range f.branches {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, branch.ErrBranchNotFound
}

func (f *fakeBranchRepo) GetByName(_ context.Context, name string) (*branch.Branch, error) {
	for _, b := range f.branches {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, branch.ErrBranchNotFound
}

func (f *fakeBranchRepo) List(_ context.Context, activeOnly bool) ([]branch.Branch, error) {
	var out []branch.Branch
	for _, b := range f.branches {
		if activeOnly && !b.IsActive {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBranchRepo) Update(_ context.Context, b *branch.Branch) error { return nil }

func (f *fakeBranchRepo) SetActive(_ context.Context, id string, active bool) error {
	for _, b := range f.branches {
		if b.ID == id {
			b.IsActive = active
			return nil
		}
	}
	return branch.ErrBranchNotFound
}

func (f *fakeBranchRepo) InUse(_ context.Context, _ string) (bool, error) { return false, nil }

// ---- audit recorder ----

type fakeRecorder struct {
	entries []audit.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e audit.Entry) {
	f.entries = append(f.entries, e)
}
