package user

import "github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"

var (
	ErrUserNotFound            = apperrors.New(apperrors.CodeNotFound, "user not found")
	ErrUserEmailExists         = apperrors.New(apperrors.CodeConflict, "email already registered")
	ErrUserInactive            = apperrors.New(apperrors.CodeForbidden, "user account is deactivated")
	ErrIdentityExists          = apperrors.New(apperrors.CodeConflict, "identity already linked to another user")
	ErrInsufficientPermissions = apperrors.New(apperrors.CodeForbidden, "insufficient permissions")
)
