package performance

import "github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"

var (
	ErrReviewNotFound  = apperrors.New(apperrors.CodeNotFound, "performance review not found")
	ErrNotDraft        = apperrors.Domain("only draft reviews can be modified")
	ErrNotSubmitted    = apperrors.Domain("only submitted reviews can be acknowledged")
	ErrNotReviewer     = apperrors.Forbidden("only the assigned reviewer can modify this review")
	ErrNotReviewee     = apperrors.Forbidden("only the reviewed employee can acknowledge this review")
	ErrPeriodReviewed  = apperrors.Conflict("a review already exists for this employee and period")
	ErrSelfReview      = apperrors.Domain("reviewer and reviewed employee cannot be the same person")
)
