package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/approval"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/loan"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/notification"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
	approvalsvc "github.com/kelola-hr/hrm-backend-go/internal/service/approval"
)

const auditEntityLoan = "loan"

type loanServiceImpl struct {
	loans     loan.Repository
	employees employee.EmployeeRepository
	users     user.UserRepository
	engine    *approvalsvc.Engine
	run       database.TxRunner
	auditor   audit.Recorder
	notifier  notification.Service
}

func NewLoanService(
	loans loan.Repository,
	employees employee.EmployeeRepository,
	users user.UserRepository,
	engine *approvalsvc.Engine,
	run database.TxRunner,
	auditor audit.Recorder,
	notifier notification.Service,
) loan.LoanService {
	return &loanServiceImpl{
		loans:     loans,
		employees: employees,
		users:     users,
		engine:    engine,
		run:       run,
		auditor:   auditor,
		notifier:  notifier,
	}
}

func (s *loanServiceImpl) Submit(ctx context.Context, actor user.Actor, req loan.SubmitRequest) (*loan.LoanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	employeeID, err := s.resolveTargetEmployee(actor, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !emp.IsActive {
		return nil, employee.ErrEmployeeInactive
	}

	// Repayment figures are derived server-side; the request only carries
	// the principal, rate and term.
	terms := loan.ComputeTerms(req.Amount, req.InterestRate, req.TermMonths)

	plan, err := s.engine.PlanSubmission(ctx, approval.EntityTypeLoan, employeeID, &req.Amount)
	if err != nil {
		return nil, err
	}

	l := &loan.Loan{
		EmployeeID:        employeeID,
		Amount:            req.Amount,
		InterestRate:      req.InterestRate,
		TermMonths:        req.TermMonths,
		MonthlyPayment:    terms.MonthlyPayment,
		TotalAmount:       terms.TotalAmount,
		Purpose:           req.Purpose,
		Status:            loan.Status(plan.Status),
		WorkflowID:        plan.WorkflowID,
		ApprovalLevel:     plan.ApprovalLevel,
		MaxApprovalLevel:  plan.MaxApprovalLevel,
		CurrentApproverID: plan.CurrentApproverID,
		DecidedAt:         plan.DecidedAt,
	}

	err = s.run(ctx, func(txCtx context.Context) error {
		// Serialize per-employee submissions so two racing requests cannot
		// both pass the open-loan check.
		if err := s.employees.LockByID(txCtx, employeeID); err != nil {
			return err
		}

		open, err := s.loans.HasOpenLoan(txCtx, employeeID)
		if err != nil {
			return fmt.Errorf("failed to check open loans: %w", err)
		}
		if open {
			return loan.ErrActiveLoanExists
		}

		l, err = s.loans.Create(txCtx, l)
		if err != nil {
			return fmt.Errorf("failed to create loan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionCreate,
		EntityType: auditEntityLoan,
		EntityID:   l.ID,
		NewValues: audit.Values{
			"amount":        l.Amount.String(),
			"interest_rate": l.InterestRate.String(),
			"term_months":   l.TermMonths,
			"total_amount":  l.TotalAmount.String(),
			"status":        string(l.Status),
		},
	})

	requesterName := emp.FirstName + " " + emp.LastName
	if l.Status == loan.StatusPending && l.CurrentApproverID != nil {
		s.notifyApprover(ctx, *l.CurrentApproverID, requesterName, l)
	}
	if l.Status == loan.StatusApproved {
		s.notifyEmployee(ctx, l.EmployeeID, notification.TypeLoanApproved,
			"Loan approved",
			fmt.Sprintf("Your loan of %s over %d months was approved automatically.",
				l.Amount.StringFixed(2), l.TermMonths),
			loanData(l))
	}

	return loan.ToResponse(l), nil
}

func (s *loanServiceImpl) Get(ctx context.Context, actor user.Actor, id string) (*loan.LoanResponse, error) {
	l, err := s.loans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(actor, l); err != nil {
		return nil, err
	}
	return loan.ToResponse(l), nil
}

func (s *loanServiceImpl) List(ctx context.Context, actor user.Actor, filter loan.Filter) ([]loan.LoanResponse, int, error) {
	if !user.HasPermission(actor.Role, user.PermissionLoanViewAll) {
		if actor.EmployeeID == nil {
			return nil, 0, user.ErrInsufficientPermissions
		}
		filter.EmployeeID = *actor.EmployeeID
	}

	loans, total, err := s.loans.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list loans: %w", err)
	}

	responses := make([]loan.LoanResponse, len(loans))
	for i := range loans {
		responses[i] = *loan.ToResponse(&loans[i])
	}
	return responses, total, nil
}

func (s *loanServiceImpl) Approve(ctx context.Context, actor user.Actor, id string, req loan.DecisionRequest) (*loan.LoanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out approvalsvc.Outcome
	err := s.run(ctx, func(txCtx context.Context) error {
		var current *loan.Loan
		if req.ApprovedAmount != nil {
			var err error
			current, err = s.loans.GetByID(txCtx, id)
			if err != nil {
				return err
			}
			if req.ApprovedAmount.GreaterThan(current.Amount) {
				return loan.ErrApprovedAmountHigh
			}
		}

		var err error
		out, err = s.engine.Approve(txCtx, s.loans, id, actor)
		if err != nil {
			return err
		}

		// An adjusted principal rewrites the repayment schedule in the same
		// transaction as the transition.
		if req.ApprovedAmount != nil {
			terms := loan.ComputeTerms(*req.ApprovedAmount, current.InterestRate, current.TermMonths)
			if err := s.loans.SetApprovedTerms(txCtx, id, *req.ApprovedAmount, terms.MonthlyPayment, terms.TotalAmount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	extra := audit.Values{}
	if req.Reason != "" {
		extra["reason"] = req.Reason
	}
	if req.ApprovedAmount != nil {
		extra["approved_amount"] = req.ApprovedAmount.String()
	}
	s.recordTransition(ctx, "approve", out, extra)

	l, err := s.loans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case out.NewStatus == approval.StatusApproved:
		s.notifyEmployee(ctx, l.EmployeeID, notification.TypeLoanApproved,
			"Loan approved",
			fmt.Sprintf("Your loan of %s over %d months was approved.",
				l.PrincipalAmount().StringFixed(2), l.TermMonths),
			loanData(l))
	case out.NextApproverID != nil:
		s.notifyApprover(ctx, *out.NextApproverID, s.employeeName(ctx, l.EmployeeID), l)
	}

	return loan.ToResponse(l), nil
}

func (s *loanServiceImpl) Reject(ctx context.Context, actor user.Actor, id string, req loan.DecisionRequest) (*loan.LoanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	out, err := s.engine.Reject(ctx, s.loans, id, actor)
	if err != nil {
		return nil, err
	}

	extra := audit.Values{}
	if req.Reason != "" {
		extra["reason"] = req.Reason
	}
	s.recordTransition(ctx, "reject", out, extra)

	l, err := s.loans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Your loan request of %s was rejected.", l.Amount.StringFixed(2))
	if req.Reason != "" {
		message += " Reason: " + req.Reason
	}
	s.notifyEmployee(ctx, l.EmployeeID, notification.TypeLoanRejected,
		"Loan rejected", message, loanData(l))

	return loan.ToResponse(l), nil
}

func (s *loanServiceImpl) Cancel(ctx context.Context, actor user.Actor, id string, reason string) (*loan.LoanResponse, error) {
	out, err := s.engine.Cancel(ctx, s.loans, id, actor)
	if err != nil {
		return nil, err
	}

	extra := audit.Values{}
	if reason != "" {
		extra["reason"] = reason
	}
	s.recordTransition(ctx, "cancel", out, extra)

	l, err := s.loans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return loan.ToResponse(l), nil
}

func (s *loanServiceImpl) Delegate(ctx context.Context, actor user.Actor, id string, req loan.DelegateRequest) (*loan.LoanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	out, err := s.engine.Delegate(ctx, s.loans, id, actor, req.DelegateTo)
	if err != nil {
		return nil, err
	}

	extra := audit.Values{"delegate_to": req.DelegateTo}
	if req.Reason != "" {
		extra["reason"] = req.Reason
	}
	s.recordTransition(ctx, "delegate", out, extra)

	l, err := s.loans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifyApprover(ctx, req.DelegateTo, s.employeeName(ctx, l.EmployeeID), l)

	return loan.ToResponse(l), nil
}

func (s *loanServiceImpl) Disburse(ctx context.Context, actor user.Actor, id string) (*loan.LoanResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionLoanDisburse) {
		return nil, user.ErrInsufficientPermissions
	}

	l, err := s.loans.Disburse(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     "disburse",
		EntityType: auditEntityLoan,
		EntityID:   l.ID,
		OldValues:  audit.Values{"status": string(loan.StatusApproved)},
		NewValues: audit.Values{
			"status":              string(l.Status),
			"outstanding_balance": l.OutstandingBalance.String(),
		},
	})

	s.notifyEmployee(ctx, l.EmployeeID, notification.TypeLoanDisbursed,
		"Loan disbursed",
		fmt.Sprintf("Your loan of %s has been disbursed. Monthly payment: %s over %d months.",
			l.PrincipalAmount().StringFixed(2), l.MonthlyPayment.StringFixed(2), l.TermMonths),
		loanData(l))

	return loan.ToResponse(l), nil
}

func (s *loanServiceImpl) MarkDefaulted(ctx context.Context, actor user.Actor, id string) (*loan.LoanResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionLoanDisburse) {
		return nil, user.ErrInsufficientPermissions
	}

	if err := s.loans.MarkDefaulted(ctx, id); err != nil {
		return nil, err
	}

	l, err := s.loans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     "default",
		EntityType: auditEntityLoan,
		EntityID:   l.ID,
		OldValues:  audit.Values{"status": string(loan.StatusActive)},
		NewValues: audit.Values{
			"status":              string(l.Status),
			"outstanding_balance": l.OutstandingBalance.String(),
		},
	})

	return loan.ToResponse(l), nil
}

// resolveTargetEmployee decides which employee a self-or-on-behalf call acts
// on. Acting for someone else needs the view-all permission.
func (s *loanServiceImpl) resolveTargetEmployee(actor user.Actor, requested string) (string, error) {
	if requested == "" {
		if actor.EmployeeID == nil {
			return "", apperrors.Invalid("employee_id is required for accounts without an employee record")
		}
		return *actor.EmployeeID, nil
	}
	if !actor.OwnsEmployee(requested) && !user.HasPermission(actor.Role, user.PermissionLoanViewAll) {
		return "", user.ErrInsufficientPermissions
	}
	return requested, nil
}

func (s *loanServiceImpl) authorizeView(actor user.Actor, l *loan.Loan) error {
	if user.HasPermission(actor.Role, user.PermissionLoanViewAll) {
		return nil
	}
	if actor.OwnsEmployee(l.EmployeeID) {
		return nil
	}
	if l.CurrentApproverID != nil && *l.CurrentApproverID == actor.UserID {
		return nil
	}
	return user.ErrInsufficientPermissions
}

func (s *loanServiceImpl) recordTransition(ctx context.Context, action string, out approvalsvc.Outcome, extra audit.Values) {
	newValues := audit.Values{
		"status":         out.NewStatus,
		"approval_level": out.ToLevel,
	}
	for k, v := range extra {
		newValues[k] = v
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    out.ActorID,
		Action:     action,
		EntityType: auditEntityLoan,
		EntityID:   out.ID,
		OldValues: audit.Values{
			"status":         out.OldStatus,
			"approval_level": out.FromLevel,
		},
		NewValues: newValues,
	})
}

func (s *loanServiceImpl) notifyApprover(ctx context.Context, approverUserID, requesterName string, l *loan.Loan) {
	s.notifier.Queue(ctx, notification.CreateRequest{
		UserID: approverUserID,
		Type:   notification.TypeApprovalRequested,
		Title:  "Loan approval needed",
		Message: fmt.Sprintf("%s requested a loan of %s over %d months.",
			requesterName, l.Amount.StringFixed(2), l.TermMonths),
		Data: loanData(l),
	})
}

// notifyEmployee queues a notification for the employee's user account.
// Employees without an account are skipped silently.
func (s *loanServiceImpl) notifyEmployee(ctx context.Context, employeeID string, typ notification.Type, title, message string, data map[string]interface{}) {
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

func (s *loanServiceImpl) employeeName(ctx context.Context, employeeID string) string {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return "An employee"
	}
	return emp.FirstName + " " + emp.LastName
}

func loanData(l *loan.Loan) map[string]interface{} {
	return map[string]interface{}{
		"entity_type": "loan",
		"entity_id":   l.ID,
		"amount":      l.Amount.String(),
	}
}
