package employee

import "github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"

var (
	ErrEmployeeNotFound     = apperrors.New(apperrors.CodeNotFound, "employee not found")
	ErrEmployeeCodeExists   = apperrors.New(apperrors.CodeConflict, "employee code already exists")
	ErrEmailExists          = apperrors.New(apperrors.CodeConflict, "email already registered")
	ErrEmployeeInactive     = apperrors.New(apperrors.CodeDomain, "employee is not active")
	ErrManagerNotFound      = apperrors.New(apperrors.CodeValidation, "manager does not exist")
	ErrSelfManager          = apperrors.New(apperrors.CodeValidation, "employee cannot be their own manager")
	ErrCannotDeactivateSelf = apperrors.New(apperrors.CodeDomain, "cannot deactivate your own employee record")
)
