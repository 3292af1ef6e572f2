package master

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/branch"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/department"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/position"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

// ---- branch repository ----

type fakeBranchRepo struct {
	branches []*branch.Branch
	nextID   int
	// used marks branches that departments or employees reference.
	used map[string]bool
}

func (f *fakeBranchRepo) Create(_ context.Context, b *branch.Branch) (*branch.Branch, error) {
	for _, other := range f.branches {
		if strings.EqualFold(other.Name, b.Name) {
			return nil, branch.ErrBranchNameExists
		}
	}
	f.nextID++
	b.ID = fmt.Sprintf("br-%d", f.nextID)
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	stored := *b
	f.branches = append(f.branches, &stored)
	return b, nil
}

func (f *fakeBranchRepo) GetByID(_ context.Context, id string) (*branch.Branch, error) {
	for _, b := range f.branches {
		if b.ID == id {
			copied := *b
			return &copied, nil
		}
	}
	return nil, branch.ErrBranchNotFound
}

func (f *fakeBranchRepo) GetByName(_ context.Context, name string) (*branch.Branch, error) {
	for _, b := range f.branches {
		if strings.EqualFold(b.Name, name) {
			copied := *b
			return &copied, nil
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

func (f *fakeBranchRepo) Update(_ context.Context, b *branch.Branch) error {
	for _, other := range f.branches {
		if other.ID != b.ID && strings.EqualFold(other.Name, b.Name) {
			return branch.ErrBranchNameExists
		}
	}
	for _, stored := range f.branches {
		if stored.ID == b.ID {
			// The UPDATE statement never touches is_active.
			stored.Name = b.Name
			stored.Address = b.Address
			stored.Timezone = b.Timezone
			stored.UpdatedAt = time.Now()
			return nil
		}
	}
	return branch.ErrBranchNotFound
}

func (f *fakeBranchRepo) SetActive(_ context.Context, id string, active bool) error {
	for _, b := range f.branches {
		if b.ID == id {
			b.IsActive = active
			return nil
		}
	}
	return branch.ErrBranchNotFound
}

func (f *fakeBranchRepo) InUse(_ context.Context, id string) (bool, error) {
	return f.used[id], nil
}

// ---- department repository ----

type fakeDepartmentRepo struct {
	departments []*department.Department
	nextID      int
	used        map[string]bool
}

func (f *fakeDepartmentRepo) Create(_ context.Context, d *department.Department) (*department.Department, error) {
	for _, other := range f.departments {
		if strings.EqualFold(other.Name, d.Name) {
			return nil, department.ErrDepartmentNameExists
		}
	}
	f.nextID++
	d.ID = fmt.Sprintf("dep-%d", f.nextID)
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	stored := *d
	f.departments = append(f.departments, &stored)
	return d, nil
}

func (f *fakeDepartmentRepo) GetByID(_ context.Context, id string) (*department.Department, error) {
	for _, d := range f.departments {
		if d.ID == id {
			copied := *d
			return &copied, nil
		}
	}
	return nil, department.ErrDepartmentNotFound
}

func (f *fakeDepartmentRepo) GetByName(_ context.Context, name string) (*department.Department, error) {
	for _, d := range f.departments {
		if strings.EqualFold(d.Name, name) {
			copied := *d
			return &copied, nil
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

func (f *fakeDepartmentRepo) Update(_ context.Context, d *department.Department) error {
	for _, other := range f.departments {
		if other.ID != d.ID && strings.EqualFold(other.Name, d.Name) {
			return department.ErrDepartmentNameExists
		}
	}
	for _, stored := range f.departments {
		if stored.ID == d.ID {
			stored.Name = d.Name
			stored.BranchID = d.BranchID
			stored.HeadEmployeeID = d.HeadEmployeeID
			stored.UpdatedAt = time.Now()
			return nil
		}
	}
	return department.ErrDepartmentNotFound
}

func (f *fakeDepartmentRepo) SetActive(_ context.Context, id string, active bool) error {
	for _, d := range f.departments {
		if d.ID == id {
			d.IsActive = active
			return nil
		}
	}
	return department.ErrDepartmentNotFound
}

func (f *fakeDepartmentRepo) InUse(_ context.Context, id string) (bool, error) {
	return f.used[id], nil
}

// ---- position repository ----

type fakePositionRepo struct {
	positions []*position.Position
	nextID    int
	used      map[string]bool
}

func (f *fakePositionRepo) Create(_ context.Context, p *position.Position) (*position.Position, error) {
	for _, other := range f.positions {
		if strings.EqualFold(other.Name, p.Name) && ptrEqual(other.DepartmentID, p.DepartmentID) {
			return nil, position.ErrPositionNameExists
		}
	}
	f.nextID++
	p.ID = fmt.Sprintf("pos-%d", f.nextID)
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	f.positions = append(f.positions, &stored)
	return p, nil
}

func (f *fakePositionRepo) GetByID(_ context.Context, id string) (*position.Position, error) {
	for _, p := range f.positions {
		if p.ID == id {
			copied := *p
			return &copied, nil
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

func (f *fakePositionRepo) Update(_ context.Context, p *position.Position) error {
	for _, other := range f.positions {
		if other.ID != p.ID && strings.EqualFold(other.Name, p.Name) && ptrEqual(other.DepartmentID, p.DepartmentID) {
			return position.ErrPositionNameExists
		}
	}
	for _, stored := range f.positions {
		if stored.ID == p.ID {
			stored.Name = p.Name
			stored.DepartmentID = p.DepartmentID
			stored.Level = p.Level
			stored.UpdatedAt = time.Now()
			return nil
		}
	}
	return position.ErrPositionNotFound
}

func (f *fakePositionRepo) SetActive(_ context.Context, id string, active bool) error {
	for _, p := range f.positions {
		if p.ID == id {
			p.IsActive = active
			return nil
		}
	}
	return position.ErrPositionNotFound
}

func (f *fakePositionRepo) InUse(_ context.Context, id string) (bool, error) {
	return f.used[id], nil
}

func ptrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ---- employee repository ----

type fakeEmployeeRepo struct {
	employees []*employee.Employee
}

func (f *fakeEmployeeRepo) Create(_ context.Context, e *employee.Employee) (*employee.Employee, error) {
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

func (f *fakeEmployeeRepo) List(_ context.Context, _ employee.ListFilter) ([]employee.Employee, int, error) {
	out := make([]employee.Employee, 0, len(f.employees))
	for _, e := range f.employees {
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

func (f *fakeEmployeeRepo) Update(_ context.Context, _ *employee.Employee) error { return nil }

func (f *fakeEmployeeRepo) SetActive(_ context.Context, _ string, _ bool) error { return nil }

func (f *fakeEmployeeRepo) ExistsByCodeOrEmail(_ context.Context, _, _, _ string) (bool, error) {
	return false, nil
}

func (f *fakeEmployeeRepo) FirstActiveByPosition(_ context.Context, _ string) (*employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) LockByID(_ context.Context, _ string) error { return nil }

// ---- audit recorder ----

type fakeRecorder struct {
	entries []audit.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e audit.Entry) {
	f.entries = append(f.entries, e)
}
