package shift

import "github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"

var (
	ErrShiftNotFound      = apperrors.New(apperrors.CodeNotFound, "shift not found")
	ErrAssignmentNotFound = apperrors.New(apperrors.CodeNotFound, "shift assignment not found")
	ErrNameExists         = apperrors.Conflict("a shift with this name already exists")
	ErrDateAssigned       = apperrors.Conflict("employee already has a shift assigned on this date")
	ErrShiftInactive      = apperrors.Domain("shift is inactive")
	ErrShiftInUse         = apperrors.Conflict("shift has assignments and cannot be deleted")
)
