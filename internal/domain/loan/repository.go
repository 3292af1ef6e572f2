package loan

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/approval"
)

type Filter struct {
	EmployeeID string
	Status     string
	Page       int
	Limit      int
}

// Repayment is one payroll-sourced deduction applied to a loan.
type Repayment struct {
	LoanID    string
	PayrollID string
	Amount    decimal.Decimal
}

type Repository interface {
	Create(ctx context.Context, l *Loan) (*Loan, error)
	GetByID(ctx context.Context, id string) (*Loan, error)
	List(ctx context.Context, filter Filter) ([]Loan, int, error)
	// HasOpenLoan reports whether the employee has a loan that is pending,
	// approved or active.
	HasOpenLoan(ctx context.Context, employeeID string) (bool, error)
	// SetApprovedTerms overwrites the repayment schedule after approvers
	// grant a different principal.
	SetApprovedTerms(ctx context.Context, id string, approvedAmount, monthlyPayment, totalAmount decimal.Decimal) error
	// Disburse moves an approved loan to active and opens the outstanding
	// balance at the total repayable amount.
	Disburse(ctx context.Context, id string) (*Loan, error)
	// ListActiveByEmployee returns active loans ordered by disbursement time.
	ListActiveByEmployee(ctx context.Context, employeeID string) ([]Loan, error)
	// ApplyRepayment reduces the outstanding balance and completes the loan
	// when it reaches zero. Returns the updated loan.
	ApplyRepayment(ctx context.Context, rp Repayment) (*Loan, error)
	// MarkDefaulted moves an active loan to defaulted.
	MarkDefaulted(ctx context.Context, id string) error

	approval.TargetStore
	approval.PendingScanner
}
