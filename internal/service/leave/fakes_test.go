package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/approval"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/leave"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/department"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/notification"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/sse"
)

func strPtr(s string) *string { return &s }

func passthroughTx() database.TxRunner {
	return func(ctx context.Context, fn func(txCtx context.Context) error) error {
		return fn(ctx)
	}
}

// ---- leave request repository ----

type fakeLeaveRepo struct {
	requests []leave.Request
	nextID   int
}

func (f *fakeLeaveRepo) Create(_ context.Context, request leave.Request) (leave.Request, error) {
	f.nextID++
	request.ID = fmt.Sprintf("req-%d", f.nextID)
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	f.requests = append(f.requests, request)
	return request, nil
}

func (f *fakeLeaveRepo) GetByID(_ context.Context, id string) (leave.Request, error) {
	for _, r := range f.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return leave.Request{}, leave.ErrRequestNotFound
}

func (f *fakeLeaveRepo) List(_ context.Context, filter leave.RequestFilter) ([]leave.Request, int64, error) {
	var out []leave.Request
	for _, r := range f.requests {
		if filter.EmployeeID != "" && r.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Type != "" && string(r.Type) != filter.Type {
			continue
		}
		if filter.Status != "" && string(r.Status) != filter.Status {
			continue
		}
		if filter.CurrentApproverID != "" && (r.CurrentApproverID == nil || *r.CurrentApproverID != filter.CurrentApproverID) {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeLeaveRepo) ListOverlapping(_ context.Context, employeeID string, start, end time.Time, excludeID *string) ([]leave.Request, error) {
	var out []leave.Request
	for _, r := range f.requests {
		if r.EmployeeID != employeeID {
			continue
		}
		if excludeID != nil && r.ID == *excludeID {
			continue
		}
		if r.Status != leave.StatusPending && r.Status != leave.StatusApproved {
			continue
		}
		if r.Overlaps(start, end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeLeaveRepo) SumDaysByTypeInYear(_ context.Context, employeeID string, year int, statuses []leave.Status) (map[leave.Type]float64, error) {
	sums := make(map[leave.Type]float64)
	for _, r := range f.requests {
		if r.EmployeeID != employeeID || r.StartDate.Year() != year {
			continue
		}
		for _, status := range statuses {
			if r.Status == status {
				sums[r.Type] += r.TotalDays
				break
			}
		}
	}
	return sums, nil
}

func (f *fakeLeaveRepo) LockForTransition(_ context.Context, id string) (approval.TargetState, error) {
	for _, r := range f.requests {
		if r.ID == id {
			return approval.TargetState{
				ID:                r.ID,
				EntityType:        approval.EntityTypeLeave,
				EmployeeID:        r.EmployeeID,
				Status:            string(r.Status),
				ApprovalLevel:     r.ApprovalLevel,
				MaxApprovalLevel:  r.MaxApprovalLevel,
				CurrentApproverID: r.CurrentApproverID,
				WorkflowID:        r.WorkflowID,
				UpdatedAt:         r.UpdatedAt,
			}, nil
		}
	}
	return approval.TargetState{}, leave.ErrRequestNotFound
}

func (f *fakeLeaveRepo) ApplyTransition(_ context.Context, tr approval.Transition) (bool, error) {
	for i := range f.requests {
		r := &f.requests[i]
		if r.ID != tr.ID || string(r.Status) != tr.FromStatus || r.ApprovalLevel != tr.FromLevel {
			continue
		}
		r.Status = leave.Status(tr.ToStatus)
		r.ApprovalLevel = tr.ToLevel
		r.CurrentApproverID = tr.CurrentApproverID
		if tr.DecidedAt != nil {
			r.DecidedAt = tr.DecidedAt
		}
		r.UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

func (f *fakeLeaveRepo) ListPendingTargets(ctx context.Context) ([]approval.TargetState, error) {
	var out []approval.TargetState
	for _, r := range f.requests {
		if r.Status != leave.StatusPending {
			continue
		}
		state, _ := f.LockForTransition(ctx, r.ID)
		out = append(out, state)
	}
	return out, nil
}

// ---- entitlement repository ----

type fakeEntitlementRepo struct {
	entitlements map[leave.Type]leave.Entitlement
}

func newFakeEntitlementRepo() *fakeEntitlementRepo {
	return &fakeEntitlementRepo{entitlements: make(map[leave.Type]leave.Entitlement)}
}

func (f *fakeEntitlementRepo) List(_ context.Context) ([]leave.Entitlement, error) {
	out := make([]leave.Entitlement, 0, len(f.entitlements))
	for _, t := range leave.Types {
		if ent, ok := f.entitlements[t]; ok {
			out = append(out, ent)
		}
	}
	return out, nil
}

func (f *fakeEntitlementRepo) GetByType(_ context.Context, leaveType leave.Type) (leave.Entitlement, error) {
	ent, ok := f.entitlements[leaveType]
	if !ok {
		return leave.Entitlement{}, leave.ErrEntitlementNotFound
	}
	return ent, nil
}

func (f *fakeEntitlementRepo) Upsert(_ context.Context, ent leave.Entitlement) (leave.Entitlement, error) {
	if existing, ok := f.entitlements[ent.LeaveType]; ok {
		ent.ID = existing.ID
	} else {
		ent.ID = "ent-" + string(ent.LeaveType)
	}
	ent.UpdatedAt = time.Now()
	f.entitlements[ent.LeaveType] = ent
	return ent, nil
}

// ---- workflow repository ----

type fakeWorkflowRepo struct {
	workflows []approval.Workflow
}

func (f *fakeWorkflowRepo) Create(_ context.Context, w approval.Workflow) (approval.Workflow, error) {
	f.workflows = append(f.workflows, w)
	return w, nil
}

func (f *fakeWorkflowRepo) GetByID(_ context.Context, id string) (approval.Workflow, error) {
	for _, w := range f.workflows {
		if w.ID == id {
			return w, nil
		}
	}
	return approval.Workflow{}, approval.ErrWorkflowNotFound
}

func (f *fakeWorkflowRepo) List(_ context.Context, _ approval.ListFilter) ([]approval.Workflow, int64, error) {
	return f.workflows, int64(len(f.workflows)), nil
}

func (f *fakeWorkflowRepo) ListActiveByEntityType(_ context.Context, entityType approval.EntityType) ([]approval.Workflow, error) {
	var out []approval.Workflow
	for _, w := range f.workflows {
		if w.IsActive && w.EntityType == entityType {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWorkflowRepo) Update(_ context.Context, w approval.Workflow) (approval.Workflow, error) {
	for i := range f.workflows {
		if f.workflows[i].ID == w.ID {
			f.workflows[i] = w
			return w, nil
		}
	}
	return approval.Workflow{}, approval.ErrWorkflowNotFound
}

func (f *fakeWorkflowRepo) SetActive(_ context.Context, id string, active bool) error {
	for i := range f.workflows {
		if f.workflows[i].ID == id {
			f.workflows[i].IsActive = active
			return nil
		}
	}
	return approval.ErrWorkflowNotFound
}

func (f *fakeWorkflowRepo) Delete(_ context.Context, id string) error {
	for i := range f.workflows {
		if f.workflows[i].ID == id {
			f.workflows = append(f.workflows[:i], f.workflows[i+1:]...)
			return nil
		}
	}
	return approval.ErrWorkflowNotFound
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
			return e, nil
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

// ---- user repository ----

type fakeUserRepo struct {
	users []user.User
}

func (f *fakeUserRepo) Create(_ context.Context, newUser user.User) (user.User, error) {
	f.users = append(f.users, newUser)
	return newUser, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmployeeID(_ context.Context, employeeID string) (user.User, error) {
	for _, u := range f.users {
		if u.EmployeeID != nil && *u.EmployeeID == employeeID {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) List(_ context.Context, _ user.ListFilter) ([]user.User, int64, error) {
	return f.users, int64(len(f.users)), nil
}

func (f *fakeUserRepo) Update(_ context.Context, _ user.UpdateUserRequest) error { return nil }

func (f *fakeUserRepo) UpdatePassword(_ context.Context, _ string, _ string) error { return nil }

func (f *fakeUserRepo) FirstActiveByRole(_ context.Context, role user.Role) (user.User, error) {
	for _, u := range f.users {
		if u.IsActive && u.Role == role {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

// ---- department repository ----

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

func (f *fakeDepartmentRepo) List(_ context.Context, _ bool) ([]department.Department, error) {
	out := make([]department.Department, 0, len(f.departments))
	for _, d := range f.departments {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDepartmentRepo) Update(_ context.Context, d *department.Department) error {
	for i := range f.departments {
		if f.departments[i].ID == d.ID {
			f.departments[i] = d
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

func (f *fakeDepartmentRepo) InUse(_ context.Context, _ string) (bool, error) {
	return false, nil
}

// ---- audit recorder ----

type fakeRecorder struct {
	entries []audit.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e audit.Entry) {
	f.entries = append(f.entries, e)
}

// ---- notification service ----

type fakeNotifier struct {
	queued []notification.CreateRequest
}

func (f *fakeNotifier) Queue(_ context.Context, req notification.CreateRequest) {
	f.queued = append(f.queued, req)
}

func (f *fakeNotifier) QueueBulk(_ context.Context, reqs []notification.CreateRequest) {
	f.queued = append(f.queued, reqs...)
}

func (f *fakeNotifier) List(_ context.Context, _ string, _, _ int, _ bool) (*notification.ListResponse, error) {
	return &notification.ListResponse{}, nil
}

func (f *fakeNotifier) GetUnreadCount(_ context.Context, _ string) (int, error) { return 0, nil }

func (f *fakeNotifier) MarkAsRead(_ context.Context, _ string, _ notification.MarkAsReadRequest) error {
	return nil
}

func (f *fakeNotifier) MarkAllAsRead(_ context.Context, _ string) error { return nil }

func (f *fakeNotifier) Subscribe(_ string) (<-chan sse.Event, func()) {
	ch := make(chan sse.Event)
	return ch, func() {}
}

func (f *fakeNotifier) Stop() {}
