package position

import "github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"

var (
	ErrPositionNotFound   = apperrors.New(apperrors.CodeNotFound, "position not found")
	ErrPositionNameExists = apperrors.Conflict("position with this name already exists in the department")
	ErrPositionInUse      = apperrors.Conflict("position is referenced by employees")
	ErrPositionInactive   = apperrors.Domain("position is inactive")
)
