package leave

import "github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"

var (
	ErrRequestNotFound     = apperrors.New(apperrors.CodeNotFound, "leave request not found")
	ErrEntitlementNotFound = apperrors.New(apperrors.CodeNotFound, "no entitlement configured for this leave type")
	ErrOverlappingLeave    = apperrors.New(apperrors.CodeConflict, "an overlapping leave request already exists")
	ErrBalanceExceeded     = apperrors.New(apperrors.CodeDomain, "requested days exceed the remaining leave balance")
)
