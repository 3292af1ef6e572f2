package payroll

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/attendance"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/loan"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/notification"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/payroll"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/storage"
)

const auditEntityPayroll = "payroll"

type payrollServiceImpl struct {
	payrolls    payroll.Repository
	employees   employee.EmployeeRepository
	attendances attendance.Repository
	loans       loan.Repository
	users       user.UserRepository
	rates       payroll.Rates
	files       storage.FileStorage
	run         database.TxRunner
	auditor     audit.Recorder
	notifier    notification.Service
}

func NewPayrollService(
	payrolls payroll.Repository,
	employees employee.EmployeeRepository,
	attendances attendance.Repository,
	loans loan.Repository,
	users user.UserRepository,
	rates payroll.Rates,
	files storage.FileStorage,
	run database.TxRunner,
	auditor audit.Recorder,
	notifier notification.Service,
) payroll.PayrollService {
	return &payrollServiceImpl{
		payrolls:    payrolls,
		employees:   employees,
		attendances: attendances,
		loans:       loans,
		users:       users,
		rates:       rates,
		files:       files,
		run:         run,
		auditor:     auditor,
		notifier:    notifier,
	}
}

// Generate creates draft payroll rows for every active employee in the
// period. Employees with an existing row or no salary are skipped; rows
// whose computation fails (deductions exceeding gross) are reported but do
// not abort the run.
func (s *payrollServiceImpl) Generate(ctx context.Context, actor user.Actor, req payroll.GenerateRequest) (*payroll.GenerateResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionPayrollManage) {
		return nil, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}

	overtime, err := s.attendances.SummarizeOvertime(ctx, req.PeriodMonth, req.PeriodYear)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize overtime: %w", err)
	}

	result := &payroll.GenerateResponse{
		PeriodMonth: req.PeriodMonth,
		PeriodYear:  req.PeriodYear,
	}

	for i := range employees {
		emp := &employees[i]
		if emp.BaseSalary.IsZero() {
			result.Skipped++
			continue
		}

		exists, err := s.payrolls.ExistsForPeriod(ctx, emp.ID, req.PeriodMonth, req.PeriodYear)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing payroll: %w", err)
		}
		if exists {
			result.Skipped++
			continue
		}

		loanDeductions, _, err := s.loanDeductionsFor(ctx, emp.ID, "")
		if err != nil {
			return nil, err
		}

		comp, err := payroll.Compute(payroll.ComputeInput{
			BasicSalary:    emp.BaseSalary,
			Allowances:     req.Allowances,
			Bonuses:        req.Bonuses,
			Deductions:     req.Deductions,
			OvertimeHours:  decimal.NewFromFloat(overtime[emp.ID]),
			LoanDeductions: loanDeductions,
		}, s.rates)
		if err != nil {
			result.Failed = append(result.Failed, emp.ID)
			slog.Warn("payroll computation failed", "employee_id", emp.ID, "error", err)
			continue
		}

		rec := &payroll.Record{
			EmployeeID:       emp.ID,
			PeriodMonth:      req.PeriodMonth,
			PeriodYear:       req.PeriodYear,
			BasicSalary:      emp.BaseSalary,
			TotalAllowances:  comp.TotalAllowances,
			OvertimePay:      comp.OvertimePay,
			TotalBonuses:     comp.TotalBonuses,
			TotalDeductions:  comp.TotalDeductions,
			TaxAmount:        comp.TaxAmount,
			InsuranceAmount:  comp.InsuranceAmount,
			PensionAmount:    comp.PensionAmount,
			LoanDeductions:   comp.LoanDeductions,
			GrossPay:         comp.GrossPay,
			NetPay:           comp.NetPay,
			AllowanceDetails: req.Allowances,
			DeductionDetails: req.Deductions,
			Status:           payroll.StatusDraft,
		}

		if _, err := s.payrolls.Create(ctx, rec); err != nil {
			// A concurrent run won the unique period constraint.
			if errors.Is(err, payroll.ErrPeriodExists) {
				result.Skipped++
				continue
			}
			return nil, fmt.Errorf("failed to create payroll for employee %s: %w", emp.ID, err)
		}
		result.Generated++
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     "generate",
		EntityType: auditEntityPayroll,
		EntityID:   fmt.Sprintf("%04d-%02d", req.PeriodYear, req.PeriodMonth),
		NewValues: audit.Values{
			"generated": result.Generated,
			"skipped":   result.Skipped,
			"failed":    len(result.Failed),
		},
	})

	return result, nil
}

func (s *payrollServiceImpl) Get(ctx context.Context, actor user.Actor, id string) (*payroll.RecordResponse, error) {
	rec, err := s.payrolls.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(actor, rec); err != nil {
		return nil, err
	}
	return payroll.ToResponse(rec), nil
}

func (s *payrollServiceImpl) List(ctx context.Context, actor user.Actor, filter payroll.Filter) ([]payroll.RecordResponse, int, error) {
	if !user.HasPermission(actor.Role, user.PermissionPayrollViewAll) {
		if actor.EmployeeID == nil {
			return nil, 0, user.ErrInsufficientPermissions
		}
		filter.EmployeeID = *actor.EmployeeID
	}

	records, total, err := s.payrolls.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}

	responses := make([]payroll.RecordResponse, len(records))
	for i := range records {
		responses[i] = *payroll.ToResponse(&records[i])
	}
	return responses, total, nil
}

func (s *payrollServiceImpl) Approve(ctx context.Context, actor user.Actor, id string) (*payroll.RecordResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionPayrollManage) {
		return nil, user.ErrInsufficientPermissions
	}

	err := s.run(ctx, func(txCtx context.Context) error {
		rec, err := s.payrolls.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if rec.Status != payroll.StatusDraft {
			return payroll.ErrNotDraft
		}
		return s.payrolls.SetStatus(txCtx, id, payroll.StatusApproved)
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     "approve",
		EntityType: auditEntityPayroll,
		EntityID:   id,
		OldValues:  audit.Values{"status": string(payroll.StatusDraft)},
		NewValues:  audit.Values{"status": string(payroll.StatusApproved)},
	})

	rec, err := s.payrolls.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return payroll.ToResponse(rec), nil
}

// Pay finalizes an approved record. Loan deductions are re-derived from the
// employee's active loans at payment time, the repayments applied, the
// payslip rendered and archived, all in one transaction with the status
// change.
func (s *payrollServiceImpl) Pay(ctx context.Context, actor user.Actor, id string) (*payroll.RecordResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionPayrollManage) {
		return nil, user.ErrInsufficientPermissions
	}

	var paid *payroll.Record
	err := s.run(ctx, func(txCtx context.Context) error {
		rec, err := s.payrolls.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		switch rec.Status {
		case payroll.StatusPaid:
			return payroll.ErrAlreadyPaid
		case payroll.StatusApproved:
		default:
			return payroll.ErrNotApproved
		}

		loanDeductions, repayments, err := s.loanDeductionsFor(txCtx, rec.EmployeeID, rec.ID)
		if err != nil {
			return err
		}

		rec.LoanDeductions = loanDeductions
		rec.NetPay = rec.GrossPay.
			Sub(rec.TotalDeductions).
			Sub(rec.TaxAmount).
			Sub(rec.InsuranceAmount).
			Sub(rec.PensionAmount).
			Sub(loanDeductions)
		if rec.NetPay.IsNegative() {
			return apperrors.Newf(apperrors.CodeDomain, "net pay is negative (%s): deductions exceed gross pay", rec.NetPay)
		}

		for _, rp := range repayments {
			if _, err := s.loans.ApplyRepayment(txCtx, rp); err != nil {
				return fmt.Errorf("failed to apply loan repayment: %w", err)
			}
		}

		emp, err := s.employees.GetByID(txCtx, rec.EmployeeID)
		if err != nil {
			return err
		}

		payslip, err := renderPayslip(rec, emp.FullName(), emp.EmployeeCode)
		if err != nil {
			return fmt.Errorf("failed to render payslip: %w", err)
		}
		path, err := s.files.Save(txCtx, bytes.NewReader(payslip), payslipKey(rec))
		if err != nil {
			return fmt.Errorf("failed to archive payslip: %w", err)
		}

		rec.PayslipPath = &path
		rec.PaidBy = &actor.UserID
		if err := s.payrolls.MarkPaid(txCtx, rec); err != nil {
			return err
		}

		paid = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     "pay",
		EntityType: auditEntityPayroll,
		EntityID:   paid.ID,
		OldValues:  audit.Values{"status": string(payroll.StatusApproved)},
		NewValues: audit.Values{
			"status":          string(payroll.StatusPaid),
			"net_pay":         paid.NetPay.String(),
			"loan_deductions": paid.LoanDeductions.String(),
		},
	})

	s.notifyEmployee(ctx, paid.EmployeeID, notification.TypePayrollPaid,
		"Salary paid",
		fmt.Sprintf("Your salary for %04d-%02d has been paid. Net pay: %s.",
			paid.PeriodYear, paid.PeriodMonth, paid.NetPay.StringFixed(2)),
		map[string]interface{}{
			"entity_type": "payroll",
			"entity_id":   paid.ID,
			"net_pay":     paid.NetPay.String(),
		})

	rec, err := s.payrolls.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return payroll.ToResponse(rec), nil
}

func (s *payrollServiceImpl) Payslip(ctx context.Context, actor user.Actor, id string) ([]byte, error) {
	rec, err := s.payrolls.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(actor, rec); err != nil {
		return nil, err
	}
	if rec.PayslipPath == nil {
		return nil, payroll.ErrNoPayslip
	}

	file, err := s.files.Open(ctx, *rec.PayslipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open payslip: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read payslip: %w", err)
	}
	return data, nil
}

func (s *payrollServiceImpl) authorizeView(actor user.Actor, rec *payroll.Record) error {
	if user.HasPermission(actor.Role, user.PermissionPayrollViewAll) {
		return nil
	}
	if actor.OwnsEmployee(rec.EmployeeID) {
		return nil
	}
	return user.ErrInsufficientPermissions
}

// loanDeductionsFor sums this month's repayment across the employee's active
// loans, capping each at its outstanding balance so a final installment
// never overcharges. payrollID may be empty during generation previews.
func (s *payrollServiceImpl) loanDeductionsFor(ctx context.Context, employeeID, payrollID string) (decimal.Decimal, []loan.Repayment, error) {
	active, err := s.loans.ListActiveByEmployee(ctx, employeeID)
	if err != nil {
		return decimal.Decimal{}, nil, fmt.Errorf("failed to list active loans: %w", err)
	}

	total := decimal.Zero
	var repayments []loan.Repayment
	for _, l := range active {
		amount := l.MonthlyPayment
		if l.OutstandingBalance.LessThan(amount) {
			amount = l.OutstandingBalance
		}
		if !amount.IsPositive() {
			continue
		}
		total = total.Add(amount)
		repayments = append(repayments, loan.Repayment{
			LoanID:    l.ID,
			PayrollID: payrollID,
			Amount:    amount,
		})
	}
	return total, repayments, nil
}

// notifyEmployee queues a notification for the employee's user account.
// Employees without an account are skipped silently.
func (s *payrollServiceImpl) notifyEmployee(ctx context.Context, employeeID string, typ notification.Type, title, message string, data map[string]interface{}) {
	account, err := s.users.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			slog.Warn("failed to load notification recipient", "employee_id", employeeID, "error", err)
		}
		return
	}

	s.notifier.Queue(ctx, notification.CreateRequest{
		UserID:  account.ID,
		Type:    typ,
		Title:   title,
		Message: message,
		Data:    data,
	})
}

func payslipKey(rec *payroll.Record) string {
	return fmt.Sprintf("%04d/%02d/%s.pdf", rec.PeriodYear, rec.PeriodMonth, rec.EmployeeID)
}
