package loan

import "github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"

var (
	ErrLoanNotFound       = apperrors.New(apperrors.CodeNotFound, "loan not found")
	ErrActiveLoanExists   = apperrors.Conflict("employee already has an active or pending loan")
	ErrNotDisbursable     = apperrors.Domain("loan is not in an approved state")
	ErrNotActive          = apperrors.Domain("loan is not active")
	ErrApprovedAmountHigh = apperrors.Domain("approved amount cannot exceed the requested amount")
)
