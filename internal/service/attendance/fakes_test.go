package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/attendance"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/shift"
)

func strPtr(s string) *string { return &s }

// ---- attendance repository ----

type fakeAttendanceRepo struct {
	records []*attendance.Attendance
	nextID  int
}

func (f *fakeAttendanceRepo) Create(_ context.Context, a *attendance.Attendance) (*attendance.Attendance, error) {
	for _, existing := range f.records {
		if existing.EmployeeID == a.EmployeeID && existing.Date.Equal(a.Date) {
			return nil, attendance.ErrAlreadyCheckedIn
		}
	}
	f.nextID++
	a.ID = fmt.Sprintf("att-%d", f.nextID)
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	f.records = append(f.records, a)
	return a, nil
}

func (f *fakeAttendanceRepo) GetByID(_ context.Context, id string) (*attendance.Attendance, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, attendance.ErrNotFound
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	for _, rec := range f.records {
		if rec.EmployeeID == employeeID && rec.Date.Equal(date) {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceRepo) Update(_ context.Context, a *attendance.Attendance) error {
	for i := range f.records {
		if f.records[i].ID == a.ID {
			copied := *a
			copied.UpdatedAt = time.Now()
			f.records[i] = &copied
			return nil
		}
	}
	return attendance.ErrNotFound
}

func (f *fakeAttendanceRepo) List(_ context.Context, filter attendance.Filter) ([]attendance.Attendance, int, error) {
	var out []attendance.Attendance
	for _, rec := range f.records {
		if filter.EmployeeID != "" && rec.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.DateFrom != nil && rec.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && rec.Date.After(*filter.DateTo) {
			continue
		}
		out = append(out, *rec)
	}
	return out, len(out), nil
}

func (f *fakeAttendanceRepo) ListOpenBefore(_ context.Context, date time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, rec := range f.records {
		if rec.CheckOutTime == nil && rec.Date.Before(date) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) SummarizeOvertime(_ context.Context, month, year int) (map[string]float64, error) {
	totals := make(map[string]float64)
	for _, rec := range f.records {
		if rec.OvertimeHours == nil {
			continue
		}
		if int(rec.Date.Month()) != month || rec.Date.Year() != year {
			continue
		}
		totals[rec.EmployeeID] += *rec.OvertimeHours
	}
	return totals, nil
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

// ---- shift repositories ----

type fakeShiftRepo struct {
	shifts []*shift.Shift
}

func (f *fakeShiftRepo) Create(_ context.Context, s *shift.Shift) (*shift.Shift, error) {
	f.shifts = append(f.shifts, s)
	return s, nil
}

func (f *fakeShiftRepo) GetByID(_ context.Context, id string) (*shift.Shift, error) {
	for _, s := range f.shifts {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, shift.ErrShiftNotFound
}

func (f *fakeShiftRepo) GetByName(_ context.Context, name string) (*shift.Shift, error) {
	for _, s := range f.shifts {
		if s.Name == name {
			return s, nil
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
	for i := range f.shifts {
		if f.shifts[i].ID == s.ID {
			f.shifts[i] = s
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

func (f *fakeShiftRepo) HasAssignments(_ context.Context, _ string) (bool, error) {
	return false, nil
}

type fakeAssignmentRepo struct {
	assignments []*shift.Assignment
}

func (f *fakeAssignmentRepo) Create(_ context.Context, a *shift.Assignment) (*shift.Assignment, error) {
	f.assignments = append(f.assignments, a)
	return a, nil
}

func (f *fakeAssignmentRepo) GetByID(_ context.Context, id string) (*shift.Assignment, error) {
	for _, a := range f.assignments {
		if a.ID == id {
			return a, nil
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

// ---- audit recorder ----

type fakeRecorder struct {
	entries []audit.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e audit.Entry) {
	f.entries = append(f.entries, e)
}
