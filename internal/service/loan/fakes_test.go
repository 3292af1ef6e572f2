package loan

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/approval"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/loan"
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

// ---- loan repository ----

type fakeLoanRepo struct {
	loans  []*loan.Loan
	nextID int
}

func (f *fakeLoanRepo) Create(_ context.Context, l *loan.Loan) (*loan.Loan, error) {
	f.nextID++
	l.ID = fmt.Sprintf("loan-%d", f.nextID)
	l.OutstandingBalance = decimal.Zero
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	f.loans = append(f.loans, l)
	return l, nil
}

func (f *fakeLoanRepo) GetByID(_ context.Context, id string) (*loan.Loan, error) {
	for _, l := range f.loans {
		if l.ID == id {
			copied := *l
			return &copied, nil
		}
	}
	return nil, loan.ErrLoanNotFound
}

func (f *fakeLoanRepo) List(_ context.Context, filter loan.Filter) ([]loan.Loan, int, error) {
	var out []loan.Loan
	for _, l := range f.loans {
		if filter.EmployeeID != "" && l.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && string(l.Status) != filter.Status {
			continue
		}
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (f *fakeLoanRepo) HasOpenLoan(_ context.Context, employeeID string) (bool, error) {
	for _, l := range f.loans {
		if l.EmployeeID != employeeID {
			continue
		}
		switch l.Status {
		case loan.StatusPending, loan.StatusApproved, loan.StatusActive:
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLoanRepo) SetApprovedTerms(_ context.Context, id string, approvedAmount, monthlyPayment, totalAmount decimal.Decimal) error {
	for _, l := range f.loans {
		if l.ID == id {
			amount := approvedAmount
			l.ApprovedAmount = &amount
			l.MonthlyPayment = monthlyPayment
			l.TotalAmount = totalAmount
			l.UpdatedAt = time.Now()
			return nil
		}
	}
	return loan.ErrLoanNotFound
}

func (f *fakeLoanRepo) Disburse(_ context.Context, id string) (*loan.Loan, error) {
	for _, l := range f.loans {
		if l.ID != id {
			continue
		}
		if l.Status != loan.StatusApproved {
			return nil, loan.ErrNotDisbursable
		}
		now := time.Now()
		l.Status = loan.StatusActive
		l.OutstandingBalance = l.TotalAmount
		l.DisbursedAt = &now
		l.UpdatedAt = now
		copied := *l
		return &copied, nil
	}
	return nil, loan.ErrNotDisbursable
}

func (f *fakeLoanRepo) ListActiveByEmployee(_ context.Context, employeeID string) ([]loan.Loan, error) {
	var out []loan.Loan
	for _, l := range f.loans {
		if l.EmployeeID == employeeID && l.Status == loan.StatusActive {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLoanRepo) ApplyRepayment(_ context.Context, rp loan.Repayment) (*loan.Loan, error) {
	for _, l := range f.loans {
		if l.ID != rp.LoanID {
			continue
		}
		if l.Status != loan.StatusActive {
			return nil, loan.ErrNotActive
		}
		l.OutstandingBalance = l.OutstandingBalance.Sub(rp.Amount)
		if !l.OutstandingBalance.IsPositive() {
			l.OutstandingBalance = decimal.Zero
			l.Status = loan.StatusCompleted
		}
		l.UpdatedAt = time.Now()
		copied := *l
		return &copied, nil
	}
	return nil, loan.ErrNotActive
}

func (f *fakeLoanRepo) MarkDefaulted(_ context.Context, id string) error {
	for _, l := range f.loans {
		if l.ID == id {
			if l.Status != loan.StatusActive {
				return loan.ErrNotActive
			}
			l.Status = loan.StatusDefaulted
			l.UpdatedAt = time.Now()
			return nil
		}
	}
	return loan.ErrNotActive
}

func (f *fakeLoanRepo) LockForTransition(_ context.Context, id string) (approval.TargetState, error) {
	for _, l := range f.loans {
		if l.ID == id {
			return approval.TargetState{
				ID:                l.ID,
				EntityType:        approval.EntityTypeLoan,
				EmployeeID:        l.EmployeeID,
				Status:            string(l.Status),
				ApprovalLevel:     l.ApprovalLevel,
				MaxApprovalLevel:  l.MaxApprovalLevel,
				CurrentApproverID: l.CurrentApproverID,
				WorkflowID:        l.WorkflowID,
				UpdatedAt:         l.UpdatedAt,
			}, nil
		}
	}
	return approval.TargetState{}, loan.ErrLoanNotFound
}

func (f *fakeLoanRepo) ApplyTransition(_ context.Context, tr approval.Transition) (bool, error) {
	for _, l := range f.loans {
		if l.ID != tr.ID || string(l.Status) != tr.FromStatus || l.ApprovalLevel != tr.FromLevel {
			continue
		}
		l.Status = loan.Status(tr.ToStatus)
		l.ApprovalLevel = tr.ToLevel
		l.CurrentApproverID = tr.CurrentApproverID
		if tr.DecidedAt != nil {
			l.DecidedAt = tr.DecidedAt
		}
		l.UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

func (f *fakeLoanRepo) ListPendingTargets(ctx context.Context) ([]approval.TargetState, error) {
	var out []approval.TargetState
	for _, l := range f.loans {
		if l.Status != loan.StatusPending {
			continue
		}
		state, _ := f.LockForTransition(ctx, l.ID)
		out = append(out, state)
	}
	return out, nil
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
