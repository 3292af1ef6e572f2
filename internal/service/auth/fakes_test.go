package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/auth"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/oauth"
)

func strPtr(s string) *string { return &s }

func passthroughTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// ---- user repository ----

type fakeUserRepo struct {
	users  []user.User
	nextID int
}

func (f *fakeUserRepo) Create(_ context.Context, newUser user.User) (user.User, error) {
	for _, u := range f.users {
		if u.Email == newUser.Email {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	f.nextID++
	newUser.ID = fmt.Sprintf("u-%d", f.nextID)
	newUser.CreatedAt = time.Now()
	newUser.UpdatedAt = newUser.CreatedAt
	f.users = append(f.users, newUser)
	return newUser, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmployeeID(_ context.Context, employeeID string) (user.User, error) {
	for _, u := range f.users {
		if u.EmployeeID != nil && *u.EmployeeID == employeeID {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) List(_ context.Context, _ user.ListFilter) ([]user.User, int64, error) {
	return f.users, int64(len(f.users)), nil
}

func (f *fakeUserRepo) Update(_ context.Context, req user.UpdateUserRequest) error {
	for i := range f.users {
		if f.users[i].ID != req.ID {
			continue
		}
		if req.IsActive != nil {
			f.users[i].IsActive = *req.IsActive
		}
		return nil
	}
	return user.ErrUserNotFound
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, userID string, passwordHash string) error {
	for i := range f.users {
		if f.users[i].ID == userID {
			f.users[i].PasswordHash = &passwordHash
			return nil
		}
	}
	return user.ErrUserNotFound
}

func (f *fakeUserRepo) FirstActiveByRole(_ context.Context, role user.Role) (user.User, error) {
	for _, u := range f.users {
		if u.IsActive && u.Role == role {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

// ---- identity repository ----

type fakeIdentityRepo struct {
	identities []user.Identity
	nextID     int
}

func (f *fakeIdentityRepo) Create(_ context.Context, identity user.Identity) (user.Identity, error) {
	for _, existing := range f.identities {
		if existing.Provider == identity.Provider && existing.ProviderUserID == identity.ProviderUserID {
			return user.Identity{}, user.ErrIdentityExists
		}
	}
	f.nextID++
	identity.ID = fmt.Sprintf("idn-%d", f.nextID)
	identity.CreatedAt = time.Now()
	f.identities = append(f.identities, identity)
	return identity, nil
}

func (f *fakeIdentityRepo) GetByProvider(_ context.Context, provider string, providerUserID string) (user.Identity, error) {
	for _, identity := range f.identities {
		if identity.Provider == provider && identity.ProviderUserID == providerUserID {
			return identity, nil
		}
	}
	return user.Identity{}, user.ErrUserNotFound
}

func (f *fakeIdentityRepo) ListByUser(_ context.Context, userID string) ([]user.Identity, error) {
	var out []user.Identity
	for _, identity := range f.identities {
		if identity.UserID == userID {
			out = append(out, identity)
		}
	}
	return out, nil
}

// ---- employee repository ----

type fakeEmployeeRepo struct {
	employees []*employee.Employee
}

func (f *fakeEmployeeRepo) Create(_ context.Context, e *employee.Employee) (*employee.Employee, error) {
	f.employees = append(f.employees, e)
	return e, nil
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (*employee.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) GetByCode(_ context.Context, code string) (*employee.Employee, error) {
	for _, e := range f.employees {
		if e.EmployeeCode == code {
			return e, nil
		}
	}
	return nil, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) List(_ context.Context, _ employee.ListFilter) ([]employee.Employee, int, error) {
	out := make([]employee.Employee, 0, len(f.employees))
	for _, e := range f.employees {
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (f *fakeEmployeeRepo) ListActive(_ context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		if e.IsActive {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) Update(_ context.Context, e *employee.Employee) error {
	for i := range f.employees {
		if f.employees[i].ID == e.ID {
			f.employees[i] = e
			return nil
		}
	}
	return employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) SetActive(_ context.Context, id string, active bool) error {
	for _, e := range f.employees {
		if e.ID == id {
			e.IsActive = active
			return nil
		}
	}
	return employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) ExistsByCodeOrEmail(_ context.Context, _, _, _ string) (bool, error) {
	return false, nil
}

func (f *fakeEmployeeRepo) FirstActiveByPosition(_ context.Context, _ string) (*employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) LockByID(_ context.Context, id string) error {
	for _, e := range f.employees {
		if e.ID == id {
			return nil
		}
	}
	return employee.ErrEmployeeNotFound
}

// ---- session repository ----

type fakeSession struct {
	userID    string
	expiresAt int64
	tracking  auth.SessionTrackingRequest
	revoked   bool
}

type fakeSessionRepo struct {
	sessions map[string]*fakeSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*fakeSession)}
}

func (f *fakeSessionRepo) Create(_ context.Context, userID string, token string, expiresAt int64, tracking auth.SessionTrackingRequest) error {
	f.sessions[token] = &fakeSession{userID: userID, expiresAt: expiresAt, tracking: tracking}
	return nil
}

func (f *fakeSessionRepo) IsRevoked(_ context.Context, token string) (bool, error) {
	sess, ok := f.sessions[token]
	if !ok {
		// The real repository surfaces pgx.ErrNoRows for unknown tokens.
		return false, errors.New("no rows in result set")
	}
	if sess.revoked || sess.expiresAt <= time.Now().Unix() {
		return true, nil
	}
	return false, nil
}

func (f *fakeSessionRepo) Revoke(_ context.Context, token string) error {
	if sess, ok := f.sessions[token]; ok {
		sess.revoked = true
	}
	return nil
}

func (f *fakeSessionRepo) RevokeAllForUser(_ context.Context, userID string) error {
	for _, sess := range f.sessions {
		if sess.userID == userID {
			sess.revoked = true
		}
	}
	return nil
}

// ---- google oauth ----

type fakeGoogle struct {
	info        oauth.GoogleInformation
	exchangeErr error
	profileErr  error
}

func (f *fakeGoogle) GenerateState(userAgent string) string {
	return "state-" + userAgent
}

func (f *fakeGoogle) RedirectURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (f *fakeGoogle) VerifyToken(_ context.Context, code string) (*oauth2.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth2.Token{AccessToken: "ya29." + code}, nil
}

func (f *fakeGoogle) VerifyUser(_ context.Context, _ *oauth2.Token) (oauth.GoogleInformation, error) {
	if f.profileErr != nil {
		return oauth.GoogleInformation{}, f.profileErr
	}
	return f.info, nil
}

// ---- audit recorder ----

type fakeRecorder struct {
	entries []audit.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e audit.Entry) {
	f.entries = append(f.entries, e)
}
