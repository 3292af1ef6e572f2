package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/auth"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/jwt"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/oauth"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/validator"
)

const auditEntityUser = "user"

type authServiceImpl struct {
	users      user.UserRepository
	identities user.IdentityRepository
	employees  employee.EmployeeRepository
	sessions   auth.SessionRepository
	tokens     jwt.Service
	google     oauth.GoogleService // nil when Google sign-in is not configured
	run        database.TxRunner
	auditor    audit.Recorder
}

func NewAuthService(
	users user.UserRepository,
	identities user.IdentityRepository,
	employees employee.EmployeeRepository,
	sessions auth.SessionRepository,
	tokens jwt.Service,
	google oauth.GoogleService,
	run database.TxRunner,
	auditor audit.Recorder,
) auth.AuthService {
	return &authServiceImpl{
		users:      users,
		identities: identities,
		employees:  employees,
		sessions:   sessions,
		tokens:     tokens,
		google:     google,
		run:        run,
		auditor:    auditor,
	}
}

// Register creates a user account. The first account ever registered becomes
// the administrator; every later registration must be performed by an admin.
func (s *authServiceImpl) Register(ctx context.Context, actor *auth.Actor, req auth.RegisterRequest, tracking auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	total, err := s.users.CountAll(ctx)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to count users: %w", err)
	}

	role := user.RoleEmployee
	switch {
	case total == 0:
		role = user.RoleAdmin
	case actor == nil:
		return auth.TokenResponse{}, auth.ErrRegistrationClosed
	case user.Role(actor.Role) != user.RoleAdmin:
		return auth.TokenResponse{}, user.ErrInsufficientPermissions
	case req.Role != "":
		if !validator.IsInSlice(req.Role, roleStrings()) {
			return auth.TokenResponse{}, apperrors.Invalid("invalid role")
		}
		role = user.Role(req.Role)
	}

	if req.EmployeeID != nil {
		if _, err := s.employees.GetByID(ctx, *req.EmployeeID); err != nil {
			return auth.TokenResponse{}, err
		}
		if _, err := s.users.GetByEmployeeID(ctx, *req.EmployeeID); err == nil {
			return auth.TokenResponse{}, apperrors.Conflict("employee already has a user account")
		} else if !errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, fmt.Errorf("failed to check employee linkage: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	hashed := string(hash)

	var (
		created user.User
		tokens  auth.TokenResponse
	)
	err = s.run(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.users.Create(txCtx, user.User{
			Email:        req.Email,
			PasswordHash: &hashed,
			Role:         role,
			EmployeeID:   req.EmployeeID,
			IsActive:     true,
		})
		if err != nil {
			return err
		}
		tokens, err = s.issueSession(txCtx, created, tracking)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	var actorID *string
	if actor != nil {
		actorID = &actor.UserID
	}
	s.auditor.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     audit.ActionCreate,
		EntityType: auditEntityUser,
		EntityID:   created.ID,
		NewValues: audit.Values{
			"email": created.Email,
			"role":  string(created.Role),
		},
	})

	return tokens, nil
}

func (s *authServiceImpl) Login(ctx context.Context, req auth.LoginRequest, tracking auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	account, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to look up user: %w", err)
	}

	// Accounts created through Google have no password hash.
	if account.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if !account.IsActive {
		return auth.TokenResponse{}, user.ErrUserInactive
	}

	return s.issueSession(ctx, account, tracking)
}

func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (auth.AccessTokenResponse, error) {
	token, err := jwtauth.VerifyToken(s.tokens.JWTAuth(), refreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	claims, err := token.AsMap(ctx)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	if typ, _ := claims["type"].(string); typ != "refresh" {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	revoked, err := s.sessions.IsRevoked(ctx, refreshToken)
	if err != nil {
		// Unknown sessions (never stored, or already purged) are as good as
		// invalid tokens.
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	if revoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	if !account.IsActive {
		return auth.AccessTokenResponse{}, user.ErrUserInactive
	}

	access, expiresAt, err := s.tokens.GenerateAccessToken(account.ID, account.Email, account.EmployeeID, account.Role)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return auth.AccessTokenResponse{AccessToken: access, ExpiresAt: expiresAt}, nil
}

// Logout revokes the session. Unknown or already-revoked tokens are fine:
// logout is idempotent.
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *authServiceImpl) GoogleRedirectURL(_ context.Context, userAgent string) (string, string, error) {
	if s.google == nil {
		return "", "", auth.ErrOAuthNotConfigured
	}
	state := s.google.GenerateState(userAgent)
	return s.google.RedirectURL(state), state, nil
}

// GoogleCallback signs in the user the authorization code belongs to. New
// Google identities attach to the existing account with the same email;
// unknown emails are rejected, accounts are provisioned by admins only.
func (s *authServiceImpl) GoogleCallback(ctx context.Context, code string, tracking auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if s.google == nil {
		return auth.TokenResponse{}, auth.ErrOAuthNotConfigured
	}

	oauthToken, err := s.google.VerifyToken(ctx, code)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}
	info, err := s.google.VerifyUser(ctx, oauthToken)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to fetch google profile: %w", err)
	}
	if !info.VerifiedEmail {
		return auth.TokenResponse{}, auth.ErrEmailNotVerified
	}

	identity, err := s.identities.GetByProvider(ctx, user.ProviderGoogle, info.GoogleID)
	switch {
	case err == nil:
		account, err := s.users.GetByID(ctx, identity.UserID)
		if err != nil {
			return auth.TokenResponse{}, fmt.Errorf("failed to load identity owner: %w", err)
		}
		if !account.IsActive {
			return auth.TokenResponse{}, user.ErrUserInactive
		}
		return s.issueSession(ctx, account, tracking)

	case errors.Is(err, user.ErrUserNotFound):
		// First sign-in with this Google account.
	default:
		return auth.TokenResponse{}, fmt.Errorf("failed to look up identity: %w", err)
	}

	account, err := s.users.GetByEmail(ctx, info.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrRegistrationClosed
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if !account.IsActive {
		return auth.TokenResponse{}, user.ErrUserInactive
	}

	var tokens auth.TokenResponse
	err = s.run(ctx, func(txCtx context.Context) error {
		var err error
		identity, err = s.identities.Create(txCtx, user.Identity{
			UserID:         account.ID,
			Provider:       user.ProviderGoogle,
			ProviderUserID: info.GoogleID,
			Email:          info.Email,
		})
		if err != nil {
			return err
		}
		tokens, err = s.issueSession(txCtx, account, tracking)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &account.ID,
		Action:     "link_identity",
		EntityType: auditEntityUser,
		EntityID:   account.ID,
		NewValues: audit.Values{
			"provider": identity.Provider,
			"email":    identity.Email,
		},
	})

	return tokens, nil
}

func (s *authServiceImpl) Me(ctx context.Context, userID string) (auth.MeResponse, error) {
	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return auth.MeResponse{}, err
	}

	resp := auth.MeResponse{User: account.ToResponse()}
	if account.EmployeeID != nil {
		emp, err := s.employees.GetByID(ctx, *account.EmployeeID)
		if err != nil {
			slog.Warn("user references missing employee", "user_id", account.ID, "employee_id", *account.EmployeeID, "error", err)
		} else {
			resp.Employee = emp.ToResponse()
		}
	}
	return resp, nil
}

// issueSession mints the token pair and stores the refresh session.
func (s *authServiceImpl) issueSession(ctx context.Context, account user.User, tracking auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	access, accessExp, err := s.tokens.GenerateAccessToken(account.ID, account.Email, account.EmployeeID, account.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, refreshExp, err := s.tokens.GenerateRefreshToken(account.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	if err := s.sessions.Create(ctx, account.ID, refresh, refreshExp, tracking); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to store session: %w", err)
	}

	return auth.TokenResponse{
		AccessToken:  access,
		ExpiresAt:    accessExp,
		User:         account.ToResponse(),
		RefreshToken: refresh,
		RefreshExp:   refreshExp,
	}, nil
}

func roleStrings() []string {
	out := make([]string, len(user.Roles))
	for i, r := range user.Roles {
		out[i] = string(r)
	}
	return out
}
