package department

import "github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"

var (
	ErrDepartmentNotFound   = apperrors.New(apperrors.CodeNotFound, "department not found")
	ErrDepartmentNameExists = apperrors.Conflict("department with this name already exists")
	ErrDepartmentInUse      = apperrors.Conflict("department is referenced by positions or employees")
	ErrDepartmentInactive   = apperrors.Domain("department is inactive")
	ErrHeadNotFound         = apperrors.Invalid("head employee not found")
)
