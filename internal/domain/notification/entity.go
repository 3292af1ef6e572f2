package notification

import "time"

type Type string

const (
	TypeApprovalRequested Type = "approval_requested"
	TypeLeaveApproved     Type = "leave_approved"
	TypeLeaveRejected     Type = "leave_rejected"
	TypeLoanApproved      Type = "loan_approved"
	TypeLoanRejected      Type = "loan_rejected"
	TypeLoanDisbursed     Type = "loan_disbursed"
	TypePayrollPaid       Type = "payroll_paid"
	TypeReviewSubmitted   Type = "review_submitted"
	TypeGeneric           Type = "generic"
)

type Notification struct {
	ID        string
	UserID    string
	Type      Type
	Title     string
	Message   string
	Data      map[string]interface{}
	ReadAt    *time.Time
	CreatedAt time.Time
}

func (n Notification) Read() bool {
	return n.ReadAt != nil
}
