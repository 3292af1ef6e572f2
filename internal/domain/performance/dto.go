package performance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kelola-hr/hrm-backend-go/internal/pkg/validator"
)

type ReviewResponse struct {
	ID             string          `json:"id"`
	EmployeeID     string          `json:"employee_id"`
	EmployeeName   *string         `json:"employee_name,omitempty"`
	ReviewerID     string          `json:"reviewer_id"`
	ReviewerName   *string         `json:"reviewer_name,omitempty"`
	PeriodYear     int             `json:"period_year"`
	PeriodQuarter  *int            `json:"period_quarter,omitempty"`
	Scores         Scores          `json:"scores"`
	OverallRating  decimal.Decimal `json:"overall_rating"`
	Strengths      *string         `json:"strengths,omitempty"`
	Improvements   *string         `json:"improvements,omitempty"`
	Status         Status          `json:"status"`
	SubmittedAt    *time.Time      `json:"submitted_at,omitempty"`
	AcknowledgedAt *time.Time      `json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func ToResponse(r *Review) *ReviewResponse {
	return &ReviewResponse{
		ID:             r.ID,
		EmployeeID:     r.EmployeeID,
		EmployeeName:   r.EmployeeName,
		ReviewerID:     r.ReviewerID,
		ReviewerName:   r.ReviewerName,
		PeriodYear:     r.PeriodYear,
		PeriodQuarter:  r.PeriodQuarter,
		Scores:         r.Scores,
		OverallRating:  r.OverallRating,
		Strengths:      r.Strengths,
		Improvements:   r.Improvements,
		Status:         r.Status,
		SubmittedAt:    r.SubmittedAt,
		AcknowledgedAt: r.AcknowledgedAt,
		CreatedAt:      r.CreatedAt,
	}
}

func validateScores(scores Scores, errs validator.ValidationErrors) validator.ValidationErrors {
	for criterion, score := range scores {
		if validator.IsEmpty(criterion) {
			errs = append(errs, validator.ValidationError{Field: "scores", Message: "criterion name cannot be empty"})
			continue
		}
		if score < 1 || score > 5 {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("scores.%s", criterion),
				Message: "score must be between 1 and 5",
			})
		}
	}
	return errs
}

type CreateRequest struct {
	EmployeeID    string  `json:"employee_id"`
	PeriodYear    int     `json:"period_year"`
	PeriodQuarter *int    `json:"period_quarter,omitempty"`
	Scores        Scores  `json:"scores"`
	Strengths     *string `json:"strengths,omitempty"`
	Improvements  *string `json:"improvements,omitempty"`
}

func (r CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if r.PeriodYear < 2000 || r.PeriodYear > 2100 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "period_year must be between 2000 and 2100"})
	}
	if r.PeriodQuarter != nil && (*r.PeriodQuarter < 1 || *r.PeriodQuarter > 4) {
		errs = append(errs, validator.ValidationError{Field: "period_quarter", Message: "period_quarter must be between 1 and 4"})
	}
	if len(r.Scores) == 0 {
		errs = append(errs, validator.ValidationError{Field: "scores", Message: "at least one scored criterion is required"})
	}
	errs = validateScores(r.Scores, errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateRequest struct {
	Scores       Scores  `json:"scores,omitempty"`
	Strengths    *string `json:"strengths,omitempty"`
	Improvements *string `json:"improvements,omitempty"`
}

func (r UpdateRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = validateScores(r.Scores, errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}
