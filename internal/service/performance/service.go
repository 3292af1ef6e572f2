package performance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/notification"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/performance"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"
)

const auditEntityReview = "performance_review"

type performanceServiceImpl struct {
	reviews   performance.Repository
	employees employee.EmployeeRepository
	users     user.UserRepository
	auditor   audit.Recorder
	notifier  notification.Service
}

func NewPerformanceService(
	reviews performance.Repository,
	employees employee.EmployeeRepository,
	users user.UserRepository,
	auditor audit.Recorder,
	notifier notification.Service,
) performance.PerformanceService {
	return &performanceServiceImpl{
		reviews:   reviews,
		employees: employees,
		users:     users,
		auditor:   auditor,
		notifier:  notifier,
	}
}

func (s *performanceServiceImpl) Create(ctx context.Context, actor user.Actor, req performance.CreateRequest) (*performance.ReviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !user.HasPermission(actor.Role, user.PermissionPerformanceManage) {
		return nil, user.ErrInsufficientPermissions
	}

	// The review is authored by the actor's own employee record; reviews
	// cannot be created in someone else's name.
	if actor.EmployeeID == nil {
		return nil, apperrors.Invalid("reviewer must have an employee record")
	}
	reviewerID := *actor.EmployeeID
	if reviewerID == req.EmployeeID {
		return nil, performance.ErrSelfReview
	}

	emp, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !emp.IsActive {
		return nil, employee.ErrEmployeeInactive
	}

	exists, err := s.reviews.ExistsForPeriod(ctx, req.EmployeeID, req.PeriodYear, req.PeriodQuarter)
	if err != nil {
		return nil, fmt.Errorf("failed to check review period: %w", err)
	}
	if exists {
		return nil, performance.ErrPeriodReviewed
	}

	rev := &performance.Review{
		EmployeeID:    req.EmployeeID,
		ReviewerID:    reviewerID,
		PeriodYear:    req.PeriodYear,
		PeriodQuarter: req.PeriodQuarter,
		Scores:        req.Scores,
		OverallRating: req.Scores.OverallRating(),
		Strengths:     req.Strengths,
		Improvements:  req.Improvements,
		Status:        performance.StatusDraft,
	}

	// The unique constraint on (employee, period) backstops a race between
	// the existence check and the insert.
	rev, err = s.reviews.Create(ctx, rev)
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionCreate,
		EntityType: auditEntityReview,
		EntityID:   rev.ID,
		NewValues: audit.Values{
			"employee_id":    rev.EmployeeID,
			"period_year":    rev.PeriodYear,
			"overall_rating": rev.OverallRating.String(),
			"status":         string(rev.Status),
		},
	})

	return performance.ToResponse(rev), nil
}

func (s *performanceServiceImpl) Get(ctx context.Context, actor user.Actor, id string) (*performance.ReviewResponse, error) {
	rev, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(actor, rev); err != nil {
		return nil, err
	}
	return performance.ToResponse(rev), nil
}

func (s *performanceServiceImpl) List(ctx context.Context, actor user.Actor, filter performance.Filter) ([]performance.ReviewResponse, int, error) {
	if !user.HasPermission(actor.Role, user.PermissionPerformanceViewAll) {
		if actor.EmployeeID == nil {
			return nil, 0, user.ErrInsufficientPermissions
		}
		filter.EmployeeID = *actor.EmployeeID
	}

	reviews, total, err := s.reviews.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list performance reviews: %w", err)
	}

	responses := make([]performance.ReviewResponse, len(reviews))
	for i := range reviews {
		responses[i] = *performance.ToResponse(&reviews[i])
	}
	return responses, total, nil
}

func (s *performanceServiceImpl) Update(ctx context.Context, actor user.Actor, id string, req performance.UpdateRequest) (*performance.ReviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rev, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.OwnsEmployee(rev.ReviewerID) {
		return nil, performance.ErrNotReviewer
	}
	if rev.Status != performance.StatusDraft {
		return nil, performance.ErrNotDraft
	}

	old := audit.Values{"overall_rating": rev.OverallRating.String()}

	if len(req.Scores) > 0 {
		rev.Scores = req.Scores
		rev.OverallRating = req.Scores.OverallRating()
	}
	if req.Strengths != nil {
		rev.Strengths = req.Strengths
	}
	if req.Improvements != nil {
		rev.Improvements = req.Improvements
	}

	// The status guard inside the update protects against a concurrent
	// submit landing between the read and the write.
	if err := s.reviews.Update(ctx, rev); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionUpdate,
		EntityType: auditEntityReview,
		EntityID:   rev.ID,
		OldValues:  old,
		NewValues:  audit.Values{"overall_rating": rev.OverallRating.String()},
	})

	return performance.ToResponse(rev), nil
}

func (s *performanceServiceImpl) Submit(ctx context.Context, actor user.Actor, id string) (*performance.ReviewResponse, error) {
	rev, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.OwnsEmployee(rev.ReviewerID) {
		return nil, performance.ErrNotReviewer
	}

	ok, err := s.reviews.SetStatus(ctx, id, performance.StatusDraft, performance.StatusSubmitted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, performance.ErrNotDraft
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     "submit",
		EntityType: auditEntityReview,
		EntityID:   rev.ID,
		OldValues:  audit.Values{"status": string(performance.StatusDraft)},
		NewValues:  audit.Values{"status": string(performance.StatusSubmitted)},
	})

	rev, err = s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	period := fmt.Sprintf("%d", rev.PeriodYear)
	if rev.PeriodQuarter != nil {
		period = fmt.Sprintf("Q%d %d", *rev.PeriodQuarter, rev.PeriodYear)
	}
	s.notifyEmployee(ctx, rev.EmployeeID, notification.TypeReviewSubmitted,
		"Performance review ready",
		fmt.Sprintf("Your performance review for %s has been submitted. Please read and acknowledge it.", period),
		map[string]interface{}{
			"entity_type": "performance_review",
			"entity_id":   rev.ID,
		})

	return performance.ToResponse(rev), nil
}

func (s *performanceServiceImpl) Acknowledge(ctx context.Context, actor user.Actor, id string) (*performance.ReviewResponse, error) {
	rev, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.OwnsEmployee(rev.EmployeeID) {
		return nil, performance.ErrNotReviewee
	}

	ok, err := s.reviews.SetStatus(ctx, id, performance.StatusSubmitted, performance.StatusAcknowledged)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, performance.ErrNotSubmitted
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     "acknowledge",
		EntityType: auditEntityReview,
		EntityID:   rev.ID,
		OldValues:  audit.Values{"status": string(performance.StatusSubmitted)},
		NewValues:  audit.Values{"status": string(performance.StatusAcknowledged)},
	})

	rev, err = s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return performance.ToResponse(rev), nil
}

func (s *performanceServiceImpl) Delete(ctx context.Context, actor user.Actor, id string) error {
	rev, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.OwnsEmployee(rev.ReviewerID) {
		return performance.ErrNotReviewer
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:    &actor.UserID,
		Action:     audit.ActionDelete,
		EntityType: auditEntityReview,
		EntityID:   rev.ID,
		OldValues: audit.Values{
			"employee_id": rev.EmployeeID,
			"period_year": rev.PeriodYear,
			"status":      string(rev.Status),
		},
	})

	return nil
}

// authorizeView grants access to HR-wide viewers, the reviewed employee and
// the review's author.
func (s *performanceServiceImpl) authorizeView(actor user.Actor, rev *performance.Review) error {
	if user.HasPermission(actor.Role, user.PermissionPerformanceViewAll) {
		return nil
	}
	if actor.OwnsEmployee(rev.EmployeeID) || actor.OwnsEmployee(rev.ReviewerID) {
		return nil
	}
	return user.ErrInsufficientPermissions
}

// notifyEmployee queues a notification for the employee's user account.
// Employees without an account are skipped silently.
func (s *performanceServiceImpl) notifyEmployee(ctx context.Context, employeeID string, typ notification.Type, title, message string, data map[string]interface{}) {
	account, err := s.users.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			slog.Warn("failed to load notification recipient", "employee_id", employeeID, "error", err)
		}
		return
	}

	s.notifier.Queue(ctx, notification.CreateRequest{
		UserID:  account.ID,
		Type:    typ,
		Title:   title,
		Message: message,
		Data:    data,
	})
}
