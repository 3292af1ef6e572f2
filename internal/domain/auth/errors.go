package auth

import "github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"

var (
	ErrInvalidCredentials  = apperrors.New(apperrors.CodeUnauthorized, "invalid email or password")
	ErrInvalidToken        = apperrors.New(apperrors.CodeUnauthorized, "invalid or expired token")
	ErrRefreshTokenRevoked = apperrors.New(apperrors.CodeUnauthorized, "refresh token has been revoked")
	ErrOAuthNotConfigured  = apperrors.New(apperrors.CodeDomain, "google sign-in is not configured")
	ErrOAuthStateMismatch  = apperrors.New(apperrors.CodeUnauthorized, "oauth state mismatch")
	ErrEmailNotVerified    = apperrors.New(apperrors.CodeForbidden, "google account email is not verified")
	ErrRegistrationClosed  = apperrors.New(apperrors.CodeForbidden, "self-registration is disabled, ask an administrator")
)
