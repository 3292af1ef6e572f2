package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusDefaulted Status = "defaulted"
)

// Loan is an employee loan. It moves through the shared approval machine
// while pending, then through the repayment lifecycle
// (approved -> active -> completed/defaulted) once disbursed.
type Loan struct {
	ID                 string
	EmployeeID         string
	Amount             decimal.Decimal
	InterestRate       decimal.Decimal
	TermMonths         int
	MonthlyPayment     decimal.Decimal
	TotalAmount        decimal.Decimal
	ApprovedAmount     *decimal.Decimal
	OutstandingBalance decimal.Decimal
	Purpose            string
	Status             Status
	WorkflowID         *string
	ApprovalLevel      int
	MaxApprovalLevel   int
	CurrentApproverID  *string
	DecidedAt          *time.Time
	DisbursedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Joined fields, populated by list/detail queries
	EmployeeName *string
}

// Terms are the derived repayment figures for a principal, flat annual rate
// and term.
type Terms struct {
	Interest       decimal.Decimal
	TotalAmount    decimal.Decimal
	MonthlyPayment decimal.Decimal
}

var (
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
)

// ComputeTerms derives the flat-rate repayment figures:
// interest = amount x rate/100 x term/12, total = amount + interest,
// monthly = total / term. Monetary results are rounded to 2 decimals.
func ComputeTerms(amount decimal.Decimal, annualRatePercent decimal.Decimal, termMonths int) Terms {
	term := decimal.NewFromInt(int64(termMonths))
	interest := amount.
		Mul(annualRatePercent).Div(hundred).
		Mul(term).Div(monthsInYear).
		Round(2)
	total := amount.Add(interest).Round(2)
	monthly := total.Div(term).Round(2)
	return Terms{Interest: interest, TotalAmount: total, MonthlyPayment: monthly}
}

// PrincipalAmount returns the amount the repayment schedule is based on:
// the approved amount when the approvers granted a different figure, the
// requested amount otherwise.
func (l Loan) PrincipalAmount() decimal.Decimal {
	if l.ApprovedAmount != nil {
		return *l.ApprovedAmount
	}
	return l.Amount
}
