package payroll

import "github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"

var (
	ErrRecordNotFound = apperrors.New(apperrors.CodeNotFound, "payroll record not found")
	ErrPeriodExists   = apperrors.Conflict("payroll already generated for this employee and period")
	ErrAlreadyPaid    = apperrors.Domain("payroll record is already paid")
	ErrNotApproved    = apperrors.Domain("payroll record must be approved before payment")
	ErrNotDraft       = apperrors.Domain("payroll record is no longer a draft")
	ErrNoPayslip      = apperrors.New(apperrors.CodeNotFound, "payslip has not been generated for this record")
)
