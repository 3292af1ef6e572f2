package payroll

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/approval"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/attendance"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/loan"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/notification"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/payroll"
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

// ---- payroll repository ----

type fakePayrollRepo struct {
	records []*payroll.Record
	nextID  int
}

func (f *fakePayrollRepo) Create(_ context.Context, rec *payroll.Record) (*payroll.Record, error) {
	for _, existing := range f.records {
		if existing.EmployeeID == rec.EmployeeID &&
			existing.PeriodMonth == rec.PeriodMonth && existing.PeriodYear == rec.PeriodYear {
			return nil, payroll.ErrPeriodExists
		}
	}
	f.nextID++
	rec.ID = fmt.Sprintf("pay-%d", f.nextID)
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakePayrollRepo) GetByID(_ context.Context, id string) (*payroll.Record, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, payroll.ErrRecordNotFound
}

func (f *fakePayrollRepo) GetByIDForUpdate(ctx context.Context, id string) (*payroll.Record, error) {
	return f.GetByID(ctx, id)
}

func (f *fakePayrollRepo) GetByEmployeePeriod(_ context.Context, employeeID string, month, year int) (*payroll.Record, error) {
	for _, rec := range f.records {
		if rec.EmployeeID == employeeID && rec.PeriodMonth == month && rec.PeriodYear == year {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, payroll.ErrRecordNotFound
}

func (f *fakePayrollRepo) List(_ context.Context, filter payroll.Filter) ([]payroll.Record, int, error) {
	var out []payroll.Record
	for _, rec := range f.records {
		if filter.EmployeeID != "" && rec.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.PeriodMonth != 0 && rec.PeriodMonth != filter.PeriodMonth {
			continue
		}
		if filter.PeriodYear != 0 && rec.PeriodYear != filter.PeriodYear {
			continue
		}
		if filter.Status != "" && string(rec.Status) != filter.Status {
			continue
		}
		out = append(out, *rec)
	}
	return out, len(out), nil
}

func (f *fakePayrollRepo) ExistsForPeriod(_ context.Context, employeeID string, month, year int) (bool, error) {
	for _, rec := range f.records {
		if rec.EmployeeID == employeeID && rec.PeriodMonth == month && rec.PeriodYear == year {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePayrollRepo) SetStatus(_ context.Context, id string, status payroll.Status) error {
	for _, rec := range f.records {
		if rec.ID == id {
			rec.Status = status
			rec.UpdatedAt = time.Now()
			return nil
		}
	}
	return payroll.ErrRecordNotFound
}

func (f *fakePayrollRepo) MarkPaid(_ context.Context, rec *payroll.Record) error {
	for _, stored := range f.records {
		if stored.ID != rec.ID {
			continue
		}
		if stored.Status != payroll.StatusApproved {
			return payroll.ErrNotApproved
		}
		now := time.Now()
		stored.TotalDeductions = rec.TotalDeductions
		stored.LoanDeductions = rec.LoanDeductions
		stored.NetPay = rec.NetPay
		stored.AllowanceDetails = rec.AllowanceDetails
		stored.DeductionDetails = rec.DeductionDetails
		stored.Status = payroll.StatusPaid
		stored.PayslipPath = rec.PayslipPath
		stored.PaidAt = &now
		stored.PaidBy = rec.PaidBy
		stored.UpdatedAt = now
		rec.Status = payroll.StatusPaid
		rec.PaidAt = &now
		return nil
	}
	return payroll.ErrRecordNotFound
}

func (f *fakePayrollRepo) SetPayslipPath(_ context.Context, id string, path string) error {
	for _, rec := range f.records {
		if rec.ID == id {
			rec.PayslipPath = &path
			return nil
		}
	}
	return payroll.ErrRecordNotFound
}

// ---- attendance repository ----

type fakeAttendanceRepo struct {
	overtime map[string]float64
}

func (f *fakeAttendanceRepo) Create(_ context.Context, a *attendance.Attendance) (*attendance.Attendance, error) {
	return a, nil
}

func (f *fakeAttendanceRepo) GetByID(_ context.Context, _ string) (*attendance.Attendance, error) {
	return nil, attendance.ErrNotFound
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(_ context.Context, _ string, _ time.Time) (*attendance.Attendance, error) {
	return nil, nil
}

func (f *fakeAttendanceRepo) Update(_ context.Context, _ *attendance.Attendance) error { return nil }

func (f *fakeAttendanceRepo) List(_ context.Context, _ attendance.Filter) ([]attendance.Attendance, int, error) {
	return nil, 0, nil
}

func (f *fakeAttendanceRepo) ListOpenBefore(_ context.Context, _ time.Time) ([]attendance.Attendance, error) {
	return nil, nil
}

func (f *fakeAttendanceRepo) SummarizeOvertime(_ context.Context, _, _ int) (map[string]float64, error) {
	if f.overtime == nil {
		return map[string]float64{}, nil
	}
	return f.overtime, nil
}

// ---- loan repository ----

type fakeLoanRepo struct {
	loans      []*loan.Loan
	repayments []loan.Repayment
}

func (f *fakeLoanRepo) Create(_ context.Context, l *loan.Loan) (*loan.Loan, error) {
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

func (f *fakeLoanRepo) List(_ context.Context, _ loan.Filter) ([]loan.Loan, int, error) {
	out := make([]loan.Loan, 0, len(f.loans))
	for _, l := range f.loans {
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (f *fakeLoanRepo) HasOpenLoan(_ context.Context, _ string) (bool, error) { return false, nil }

func (f *fakeLoanRepo) SetApprovedTerms(_ context.Context, _ string, _, _, _ decimal.Decimal) error {
	return nil
}

func (f *fakeLoanRepo) Disburse(_ context.Context, _ string) (*loan.Loan, error) {
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
		f.repayments = append(f.repayments, rp)
		copied := *l
		return &copied, nil
	}
	return nil, loan.ErrNotActive
}

func (f *fakeLoanRepo) MarkDefaulted(_ context.Context, _ string) error { return nil }

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
		return true, nil
	}
	return false, nil
}

func (f *fakeLoanRepo) ListPendingTargets(_ context.Context) ([]approval.TargetState, error) {
	return nil, nil
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

// ---- file storage ----

type fakeStorage struct {
	files map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (f *fakeStorage) Save(_ context.Context, file io.Reader, path string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	f.files[path] = data
	return path, nil
}

func (f *fakeStorage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorage) Delete(_ context.Context, path string) error {
	delete(f.files, path)
	return nil
}

func (f *fakeStorage) Exists(_ context.Context, path string) (bool, error) {
	_, ok := f.files[path]
	return ok, nil
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
