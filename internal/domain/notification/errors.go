package notification

import "github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"

var (
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "notification not found")
)
