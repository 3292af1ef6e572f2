package notification

import (
	"context"
	"sync"
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/notification"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
)

func strPtr(s string) *string { return &s }

// fakeNotificationStore is mutex-guarded: the service's workers call it from
// their own goroutines.
type fakeNotificationStore struct {
	mu         sync.Mutex
	rows       []*notification.Notification
	batchErr   error
	batchCalls int
}

func (f *fakeNotificationStore) Create(_ context.Context, n *notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *n
	f.rows = append(f.rows, &copied)
	return nil
}

func (f *fakeNotificationStore) CreateBatch(_ context.Context, ns []*notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	if f.batchErr != nil {
		return f.batchErr
	}
	for _, n := range ns {
		copied := *n
		f.rows = append(f.rows, &copied)
	}
	return nil
}

func (f *fakeNotificationStore) GetByUserID(_ context.Context, userID string, page, limit int, unreadOnly bool) ([]*notification.Notification, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*notification.Notification
	for _, n := range f.rows {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		copied := *n
		matched = append(matched, &copied)
	}

	total := len(matched)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeNotificationStore) GetUnreadCount(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, n := range f.rows {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) MarkAsRead(_ context.Context, ids []string, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	for _, n := range f.rows {
		if _, ok := wanted[n.ID]; ok && n.UserID == userID && n.ReadAt == nil {
			now := time.Now()
			n.ReadAt = &now
		}
	}
	return nil
}

func (f *fakeNotificationStore) MarkAllAsRead(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.rows {
		if n.UserID == userID && n.ReadAt == nil {
			now := time.Now()
			n.ReadAt = &now
		}
	}
	return nil
}

func (f *fakeNotificationStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *fakeNotificationStore) batchAttempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.batchCalls
}

// ---- user repository ----

type fakeUserRepo struct {
	users []user.User
}

func (f *fakeUserRepo) Create(_ context.Context, newUser user.User) (user.User, error) {
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

func (f *fakeUserRepo) Update(_ context.Context, _ user.UpdateUserRequest) error { return nil }

func (f *fakeUserRepo) UpdatePassword(_ context.Context, _ string, _ string) error { return nil }

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

// ---- mailer ----

type sentMail struct {
	To      string
	Subject string
	Message string
}

type fakeMailer struct {
	mu    sync.Mutex
	sends []sentMail
}

func (f *fakeMailer) SendNotification(to, subject, _, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sentMail{To: to, Subject: subject, Message: message})
	return nil
}

func (f *fakeMailer) sent() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMail, len(f.sends))
	copy(out, f.sends)
	return out
}
