package auth

import (
	"context"
)

type AuthService interface {
	Register(ctx context.Context, actor *Actor, req RegisterRequest, tracking SessionTrackingRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest, tracking SessionTrackingRequest) (TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (AccessTokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GoogleRedirectURL(ctx context.Context, userAgent string) (url string, state string, err error)
	GoogleCallback(ctx context.Context, code string, tracking SessionTrackingRequest) (TokenResponse, error)
	Me(ctx context.Context, userID string) (MeResponse, error)
}

// Actor mirrors user.Actor for the register path; nil means an
// unauthenticated (bootstrap) registration.
type Actor struct {
	UserID string
	Role   string
}

// SessionRepository persists refresh-token sessions. Implementations store
// only a hash of the token, never the token itself.
type SessionRepository interface {
	Create(ctx context.Context, userID string, token string, expiresAt int64, tracking SessionTrackingRequest) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// MeResponse describes the authenticated user and their employee linkage.
type MeResponse struct {
	User     interface{} `json:"user"`
	Employee interface{} `json:"employee,omitempty"`
}
