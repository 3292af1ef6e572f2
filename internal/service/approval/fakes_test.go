package approval

import (
	"context"
	"fmt"
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/approval"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/department"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
)

// passthroughTx runs the function without a transaction. Transactional
// behavior itself is covered by the guarded-update checks in the fakes.
func passthroughTx() database.TxRunner {
	return func(ctx context.Context, fn func(txCtx context.Context) error) error {
		return fn(ctx)
	}
}

// ---- workflow repository ----

type fakeWorkflowRepo struct {
	workflows []approval.Workflow
	nextID    int
}

func newFakeWorkflowRepo(workflows ...approval.Workflow) *fakeWorkflowRepo {
	return &fakeWorkflowRepo{workflows: workflows}
}

func (f *fakeWorkflowRepo) Create(_ context.Context, workflow approval.Workflow) (approval.Workflow, error) {
	f.nextID++
	workflow.ID = fmt.Sprintf("wf-%d", f.nextID)
	workflow.CreatedAt = time.Now()
	workflow.UpdatedAt = workflow.CreatedAt
	f.workflows = append(f.workflows, workflow)
	return workflow, nil
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

func (f *fakeWorkflowRepo) Update(_ context.Context, workflow approval.Workflow) (approval.Workflow, error) {
	for i := range f.workflows {
		if f.workflows[i].ID == workflow.ID {
			workflow.UpdatedAt = time.Now()
			f.workflows[i] = workflow
			return workflow, nil
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

// fakeUserRepo keeps users in insertion order, which stands in for the
// created_at ordering FirstActiveByRole relies on.
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

func (f *fakeUserRepo) Update(_ context.Context, _ user.UpdateUserRequest) error {
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, _ string, _ string) error {
	return nil
}

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

// ---- target store ----

// fakeTargetStore mimics the guarded-update contract of the real stores: a
// transition only lands when the row is still in the expected status and
// level. beforeApply, when set, runs once between lock and apply so tests
// can interleave a competing transition.
type fakeTargetStore struct {
	state       approval.TargetState
	applies     int
	beforeApply func(f *fakeTargetStore)
}

func newFakeTargetStore(state approval.TargetState) *fakeTargetStore {
	return &fakeTargetStore{state: state}
}

func (f *fakeTargetStore) LockForTransition(_ context.Context, id string) (approval.TargetState, error) {
	if f.state.ID != id {
		return approval.TargetState{}, apperrors.NotFound("request", id)
	}
	return f.state, nil
}

func (f *fakeTargetStore) ApplyTransition(_ context.Context, tr approval.Transition) (bool, error) {
	if f.beforeApply != nil {
		hook := f.beforeApply
		f.beforeApply = nil
		hook(f)
	}
	f.applies++
	return f.apply(tr), nil
}

// apply performs the guarded mutation directly, bypassing the hook. Used
// both by ApplyTransition and by tests simulating a competing writer.
func (f *fakeTargetStore) apply(tr approval.Transition) bool {
	if f.state.ID != tr.ID || f.state.Status != tr.FromStatus || f.state.ApprovalLevel != tr.FromLevel {
		return false
	}
	f.state.Status = tr.ToStatus
	f.state.ApprovalLevel = tr.ToLevel
	f.state.CurrentApproverID = tr.CurrentApproverID
	f.state.UpdatedAt = time.Now()
	return true
}

func (f *fakeTargetStore) ListPendingTargets(_ context.Context) ([]approval.TargetState, error) {
	if f.state.Status == approval.StatusPending {
		return []approval.TargetState{f.state}, nil
	}
	return nil, nil
}

// ---- audit recorder ----

type fakeRecorder struct {
	entries []audit.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e audit.Entry) {
	f.entries = append(f.entries, e)
}
