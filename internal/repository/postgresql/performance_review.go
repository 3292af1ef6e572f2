package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/performance"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
)

type performanceReviewRepositoryImpl struct {
	db *database.DB
}

func NewPerformanceReviewRepository(db *database.DB) performance.Repository {
	return &performanceReviewRepositoryImpl{db: db}
}

const performanceReviewColumns = `
	pr.id, pr.employee_id, pr.reviewer_id, pr.period_year, pr.period_quarter,
	pr.scores, pr.overall_rating, pr.strengths, pr.improvements, pr.status,
	pr.submitted_at, pr.acknowledged_at, pr.created_at, pr.updated_at`

func scanPerformanceReview(row pgx.Row, withJoins bool) (performance.Review, error) {
	var rev performance.Review

	dest := []interface{}{
		&rev.ID, &rev.EmployeeID, &rev.ReviewerID, &rev.PeriodYear, &rev.PeriodQuarter,
		&rev.Scores, &rev.OverallRating, &rev.Strengths, &rev.Improvements, &rev.Status,
		&rev.SubmittedAt, &rev.AcknowledgedAt, &rev.CreatedAt, &rev.UpdatedAt,
	}
	if withJoins {
		dest = append(dest, &rev.EmployeeName, &rev.ReviewerName)
	}

	if err := row.Scan(dest...); err != nil {
		return performance.Review{}, err
	}
	return rev, nil
}

func (r *performanceReviewRepositoryImpl) Create(ctx context.Context, rev *performance.Review) (*performance.Review, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO performance_reviews (
			id, employee_id, reviewer_id, period_year, period_quarter,
			scores, overall_rating, strengths, improvements, status,
			created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rev.EmployeeID, rev.ReviewerID, rev.PeriodYear, rev.PeriodQuarter,
		rev.Scores, rev.OverallRating, rev.Strengths, rev.Improvements, rev.Status,
	).Scan(&rev.ID, &rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_review_employee_period") {
			return nil, performance.ErrPeriodReviewed
		}
		return nil, fmt.Errorf("failed to insert performance review: %w", err)
	}

	return rev, nil
}

func (r *performanceReviewRepositoryImpl) GetByID(ctx context.Context, id string) (*performance.Review, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + performanceReviewColumns + `,
			   e.first_name || ' ' || e.last_name AS employee_name,
			   rv.first_name || ' ' || rv.last_name AS reviewer_name
		FROM performance_reviews pr
		JOIN employees e ON pr.employee_id = e.id
		JOIN employees rv ON pr.reviewer_id = rv.id
		WHERE pr.id = $1
	`

	rev, err := scanPerformanceReview(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, performance.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get performance review: %w", err)
	}

	return &rev, nil
}

func (r *performanceReviewRepositoryImpl) List(ctx context.Context, filter performance.Filter) ([]performance.Review, int, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("pr.employee_id = $%d", argIdx))
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if filter.ReviewerID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("pr.reviewer_id = $%d", argIdx))
		args = append(args, filter.ReviewerID)
		argIdx++
	}
	if filter.PeriodYear != 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("pr.period_year = $%d", argIdx))
		args = append(args, filter.PeriodYear)
		argIdx++
	}
	if filter.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("pr.status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM performance_reviews pr WHERE %s`, whereClause)
	var total int
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count performance reviews: %w", err)
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT `+performanceReviewColumns+`,
			   e.first_name || ' ' || e.last_name AS employee_name,
			   rv.first_name || ' ' || rv.last_name AS reviewer_name
		FROM performance_reviews pr
		JOIN employees e ON pr.employee_id = e.id
		JOIN employees rv ON pr.reviewer_id = rv.id
		WHERE %s
		ORDER BY pr.period_year DESC, pr.period_quarter DESC NULLS LAST, pr.created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query performance reviews: %w", err)
	}
	defer rows.Close()

	var reviews []performance.Review
	for rows.Next() {
		rev, err := scanPerformanceReview(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan performance review: %w", err)
		}
		reviews = append(reviews, rev)
	}

	return reviews, total, rows.Err()
}

func (r *performanceReviewRepositoryImpl) ExistsForPeriod(ctx context.Context, employeeID string, year int, quarter *int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	var err error
	if quarter == nil {
		err = q.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM performance_reviews
				WHERE employee_id = $1 AND period_year = $2 AND period_quarter IS NULL
			)
		`, employeeID, year).Scan(&exists)
	} else {
		err = q.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM performance_reviews
				WHERE employee_id = $1 AND period_year = $2 AND period_quarter = $3
			)
		`, employeeID, year, *quarter).Scan(&exists)
	}
	return exists, err
}

func (r *performanceReviewRepositoryImpl) Update(ctx context.Context, rev *performance.Review) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE performance_reviews
		SET scores = $1, overall_rating = $2, strengths = $3, improvements = $4,
			updated_at = NOW()
		WHERE id = $5 AND status = 'draft'
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		rev.Scores, rev.OverallRating, rev.Strengths, rev.Improvements, rev.ID,
	).Scan(&rev.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return performance.ErrNotDraft
		}
		return fmt.Errorf("failed to update performance review: %w", err)
	}

	return nil
}

func (r *performanceReviewRepositoryImpl) SetStatus(ctx context.Context, id string, from, to performance.Status) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE performance_reviews
		SET status = $1,
			submitted_at = CASE WHEN $1 = 'submitted' THEN NOW() ELSE submitted_at END,
			acknowledged_at = CASE WHEN $1 = 'acknowledged' THEN NOW() ELSE acknowledged_at END,
			updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	tag, err := q.Exec(ctx, query, to, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition performance review: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *performanceReviewRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM performance_reviews WHERE id = $1 AND status = 'draft'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete performance review: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return performance.ErrNotDraft
	}
	return nil
}
