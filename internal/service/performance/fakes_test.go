package performance

import (
	"context"
	"fmt"
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/notification"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/performance"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/sse"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

// ---- performance review repository ----

type fakeReviewRepo struct {
	reviews []*performance.Review
	nextID  int
}

func samePeriod(a *performance.Review, employeeID string, year int, quarter *int) bool {
	if a.EmployeeID != employeeID || a.PeriodYear != year {
		return false
	}
	if a.PeriodQuarter == nil || quarter == nil {
		return a.PeriodQuarter == nil && quarter == nil
	}
	return *a.PeriodQuarter == *quarter
}

func (f *fakeReviewRepo) Create(_ context.Context, rev *performance.Review) (*performance.Review, error) {
	for _, existing := range f.reviews {
		if samePeriod(existing, rev.EmployeeID, rev.PeriodYear, rev.PeriodQuarter) {
			return nil, performance.ErrPeriodReviewed
		}
	}
	f.nextID++
	rev.ID = fmt.Sprintf("rev-%d", f.nextID)
	rev.CreatedAt = time.Now()
	rev.UpdatedAt = rev.CreatedAt
	f.reviews = append(f.reviews, rev)
	return rev, nil
}

func (f *fakeReviewRepo) GetByID(_ context.Context, id string) (*performance.Review, error) {
	for _, rev := range f.reviews {
		if rev.ID == id {
			copied := *rev
			return &copied, nil
		}
	}
	return nil, performance.ErrReviewNotFound
}

func (f *fakeReviewRepo) List(_ context.Context, filter performance.Filter) ([]performance.Review, int, error) {
	var out []performance.Review
	for _, rev := range f.reviews {
		if filter.EmployeeID != "" && rev.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.ReviewerID != "" && rev.ReviewerID != filter.ReviewerID {
			continue
		}
		if filter.PeriodYear != 0 && rev.PeriodYear != filter.PeriodYear {
			continue
		}
		if filter.Status != "" && string(rev.Status) != filter.Status {
			continue
		}
		out = append(out, *rev)
	}
	return out, len(out), nil
}

func (f *fakeReviewRepo) ExistsForPeriod(_ context.Context, employeeID string, year int, quarter *int) (bool, error) {
	for _, rev := range f.reviews {
		if samePeriod(rev, employeeID, year, quarter) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewRepo) Update(_ context.Context, rev *performance.Review) error {
	for _, stored := range f.reviews {
		if stored.ID != rev.ID {
			continue
		}
		if stored.Status != performance.StatusDraft {
			return performance.ErrNotDraft
		}
		stored.Scores = rev.Scores
		stored.OverallRating = rev.OverallRating
		stored.Strengths = rev.Strengths
		stored.Improvements = rev.Improvements
		stored.UpdatedAt = time.Now()
		return nil
	}
	return performance.ErrReviewNotFound
}

func (f *fakeReviewRepo) SetStatus(_ context.Context, id string, from, to performance.Status) (bool, error) {
	for _, stored := range f.reviews {
		if stored.ID != id {
			continue
		}
		if stored.Status != from {
			return false, nil
		}
		now := time.Now()
		stored.Status = to
		switch to {
		case performance.StatusSubmitted:
			stored.SubmittedAt = &now
		case performance.StatusAcknowledged:
			stored.AcknowledgedAt = &now
		}
		stored.UpdatedAt = now
		return true, nil
	}
	return false, nil
}

func (f *fakeReviewRepo) Delete(_ context.Context, id string) error {
	for i, stored := range f.reviews {
		if stored.ID != id {
			continue
		}
		if stored.Status != performance.StatusDraft {
			return performance.ErrNotDraft
		}
		f.reviews = append(f.reviews[:i], f.reviews[i+1:]...)
		return nil
	}
	return performance.ErrNotDraft
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

func (f *fakeEmployeeRepo) ExistsByCodeOrEmail(_ context.Context, code, email, excludeID string) (bool, error) {
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

// ---- audit recorder ----

type fakeRecorder struct {
	entries []audit.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e audit.Entry) {
	f.entries = append(f.entries, e)
}

// ---- notification service ----

type fakeNotifier struct {
	queued []notification.CreateRequest
}

func (f *fakeNotifier) Queue(_ context.Context, req notification.CreateRequest) {
	f.queued = append(f.queued, req)
}

func (f *fakeNotifier) QueueBulk(_ context.Context, reqs []notification.CreateRequest) {
	f.queued = append(f.queued, reqs...)
}

func (f *fakeNotifier) List(_ context.Context, _ string, _, _ int, _ bool) (*notification.ListResponse, error) {
	return &notification.ListResponse{}, nil
}

func (f *fakeNotifier) GetUnreadCount(_ context.Context, _ string) (int, error) { return 0, nil }

func (f *fakeNotifier) MarkAsRead(_ context.Context, _ string, _ notification.MarkAsReadRequest) error {
	return nil
}

func (f *fakeNotifier) MarkAllAsRead(_ context.Context, _ string) error { return nil }

func (f *fakeNotifier) Subscribe(_ string) (<-chan sse.Event, func()) {
	ch := make(chan sse.Event)
	return ch, func() {}
}

func (f *fakeNotifier) Stop() {}
