package attendance

import "github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"

var (
	ErrAlreadyCheckedIn  = apperrors.Conflict("already checked in for this date")
	ErrNotCheckedIn      = apperrors.New(apperrors.CodeNotFound, "no open attendance to check out of")
	ErrAlreadyCheckedOut = apperrors.Domain("attendance is already checked out")
	ErrNotFound          = apperrors.New(apperrors.CodeNotFound, "attendance record not found")
	ErrCheckOutBeforeIn  = apperrors.Domain("check-out time cannot be before check-in time")
)
