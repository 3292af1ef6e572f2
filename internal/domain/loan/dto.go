package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kelola-hr/hrm-backend-go/internal/pkg/validator"
)

type LoanResponse struct {
	ID                 string           `json:"id"`
	EmployeeID         string           `json:"employee_id"`
	EmployeeName       *string          `json:"employee_name,omitempty"`
	Amount             decimal.Decimal  `json:"amount"`
	InterestRate       decimal.Decimal  `json:"interest_rate"`
	TermMonths         int              `json:"term_months"`
	MonthlyPayment     decimal.Decimal  `json:"monthly_payment"`
	TotalAmount        decimal.Decimal  `json:"total_amount"`
	ApprovedAmount     *decimal.Decimal `json:"approved_amount,omitempty"`
	OutstandingBalance decimal.Decimal  `json:"outstanding_balance"`
	Purpose            string           `json:"purpose"`
	Status             Status           `json:"status"`
	WorkflowID         *string          `json:"workflow_id,omitempty"`
	ApprovalLevel      int              `json:"approval_level"`
	MaxApprovalLevel   int              `json:"max_approval_level"`
	CurrentApproverID  *string          `json:"current_approver_id,omitempty"`
	DecidedAt          *time.Time       `json:"decided_at,omitempty"`
	DisbursedAt        *time.Time       `json:"disbursed_at,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
}

func ToResponse(l *Loan) *LoanResponse {
	return &LoanResponse{
		ID:                 l.ID,
		EmployeeID:         l.EmployeeID,
		EmployeeName:       l.EmployeeName,
		Amount:             l.Amount,
		InterestRate:       l.InterestRate,
		TermMonths:         l.TermMonths,
		MonthlyPayment:     l.MonthlyPayment,
		TotalAmount:        l.TotalAmount,
		ApprovedAmount:     l.ApprovedAmount,
		OutstandingBalance: l.OutstandingBalance,
		Purpose:            l.Purpose,
		Status:             l.Status,
		WorkflowID:         l.WorkflowID,
		ApprovalLevel:      l.ApprovalLevel,
		MaxApprovalLevel:   l.MaxApprovalLevel,
		CurrentApproverID:  l.CurrentApproverID,
		DecidedAt:          l.DecidedAt,
		DisbursedAt:        l.DisbursedAt,
		CreatedAt:          l.CreatedAt,
	}
}

type SubmitRequest struct {
	EmployeeID   string          `json:"employee_id"`
	Amount       decimal.Decimal `json:"amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	TermMonths   int             `json:"term_months"`
	Purpose      string          `json:"purpose"`
}

func (r SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "amount must be greater than zero"})
	}
	if r.InterestRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "interest_rate", Message: "interest_rate cannot be negative"})
	}
	if r.TermMonths < 1 || r.TermMonths > 120 {
		errs = append(errs, validator.ValidationError{Field: "term_months", Message: "term_months must be between 1 and 120"})
	}
	if validator.IsEmpty(r.Purpose) {
		errs = append(errs, validator.ValidationError{Field: "purpose", Message: "purpose is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DecisionRequest carries the approver's optional note. Approvers may also
// grant a smaller principal than was requested.
type DecisionRequest struct {
	Reason         string           `json:"reason"`
	ApprovedAmount *decimal.Decimal `json:"approved_amount,omitempty"`
}

func (r DecisionRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ApprovedAmount != nil && !r.ApprovedAmount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "approved_amount", Message: "approved_amount must be greater than zero"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DelegateRequest struct {
	DelegateTo string `json:"delegate_to"`
	Reason     string `json:"reason"`
}

func (r DelegateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.DelegateTo) {
		errs = append(errs, validator.ValidationError{Field: "delegate_to", Message: "delegate_to is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
