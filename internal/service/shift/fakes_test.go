package shift

import (
	"context"
	"fmt"
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/shift"
)

func strPtr(s string) *string { return &s }

// ---- shift repository ----

type fakeShiftRepo struct {
	shifts      []*shift.Shift
	assignments *fakeAssignmentRepo
	nextID      int
}

func (f *fakeShiftRepo) Create(_ context.Context, s *shift.Shift) (*shift.Shift, error) {
	for _, existing := range f.shifts {
		if existing.Name == s.Name {
			return nil, shift.ErrNameExists
		}
	}
	f.nextID++
	s.ID = fmt.Sprintf("shift-%d", f.nextID)
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	f.shifts = append(f.shifts, s)
	return s, nil
}

func (f *fakeShiftRepo) GetByID(_ context.Context, id string) (*shift.Shift, error) {
	for _, s := range f.shifts {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, shift.ErrShiftNotFound
}

func (f *fakeShiftRepo) GetByName(_ context.Context, name string) (*shift.Shift, error) {
	for _, s := range f.shifts {
		if s.Name == name {
			copied := *s
			return &copied, nil
		}
	}
	return nil, shift.ErrShiftNotFound
}

func (f *fakeShiftRepo) List(_ context.Context, activeOnly bool) ([]shift.Shift, error) {
	var out []shift.Shift
	for _, s := range f.shifts {
		if activeOnly && !s.IsActive {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeShiftRepo) Update(_ context.Context, s *shift.Shift) error {
	for _, existing := range f.shifts {
		if existing.ID != s.ID && existing.Name == s.Name {
			return shift.ErrNameExists
		}
	}
	for i := range f.shifts {
		if f.shifts[i].ID == s.ID {
			copied := *s
			copied.UpdatedAt = time.Now()
			f.shifts[i] = &copied
			return nil
		}
	}
	return shift.ErrShiftNotFound
}

func (f *fakeShiftRepo) Delete(_ context.Context, id string) error {
	for i := range f.shifts {
		if f.shifts[i].ID == id {
			f.shifts = append(f.shifts[:i], f.shifts[i+1:]...)
			return nil
		}
	}
	return shift.ErrShiftNotFound
}

func (f *fakeShiftRepo) HasAssignments(_ context.Context, shiftID string) (bool, error) {
	if f.assignments == nil {
		return false, nil
	}
	for _, a := range f.assignments.assignments {
		if a.ShiftID == shiftID {
			return true, nil
		}
	}
	return false, nil
}

// ---- assignment repository ----

type fakeAssignmentRepo struct {
	assignments []*shift.Assignment
	nextID      int
}

func (f *fakeAssignmentRepo) Create(_ context.Context, a *shift.Assignment) (*shift.Assignment, error) {
	for _, existing := range f.assignments {
		if existing.EmployeeID == a.EmployeeID && existing.WorkDate.Equal(a.WorkDate) {
			return nil, shift.ErrDateAssigned
		}
	}
	f.nextID++
	a.ID = fmt.Sprintf("asg-%d", f.nextID)
	a.CreatedAt = time.Now()
	f.assignments = append(f.assignments, a)
	return a, nil
}

func (f *fakeAssignmentRepo) GetByID(_ context.Context, id string) (*shift.Assignment, error) {
	for _, a := range f.assignments {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, shift.ErrAssignmentNotFound
}

func (f *fakeAssignmentRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, workDate time.Time) (*shift.Assignment, error) {
	for _, a := range f.assignments {
		if a.EmployeeID == employeeID && a.WorkDate.Equal(workDate) {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeAssignmentRepo) List(_ context.Context, filter shift.AssignmentFilter) ([]shift.Assignment, int, error) {
	var out []shift.Assignment
	for _, a := range f.assignments {
		if filter.EmployeeID != "" && a.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.ShiftID != "" && a.ShiftID != filter.ShiftID {
			continue
		}
		if filter.DateFrom != nil && a.WorkDate.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && a.WorkDate.After(*filter.DateTo) {
			continue
		}
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (f *fakeAssignmentRepo) Delete(_ context.Context, id string) error {
	for i := range f.assignments {
		if f.assignments[i].ID == id {
			f.assignments = append(f.assignments[:i], f.assignments[i+1:]...)
			return nil
		}
	}
	return shift.ErrAssignmentNotFound
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
			return e, nil
		}
	}
	return nil, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) GetByCode(_ context.Context, code string) (*employee.Employee, error) {
	for _, e := range f.employees {
		if e.EmployeeCode == code {
			return e, nil
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

func (f *fakeEmployeeRepo) Update(_ context.Context, e *employee.Employee) error {
	for i := range f.employees {
		if f.employees[i].ID == e.ID {
			f.employees[i] = e
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

func (f *fakeEmployeeRepo) ExistsByCodeOrEmail(_ context.Context, _, _, _ string) (bool, error) {
	return false, nil
}

func (f *fakeEmployeeRepo) FirstActiveByPosition(_ context.Context, _ string) (*employee.Employee, error) {
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

// ---- audit recorder ----

type fakeRecorder struct {
	entries []audit.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e audit.Entry) {
	f.entries = append(f.entries, e)
}
