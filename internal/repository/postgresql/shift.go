package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/shift"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
)

type shiftRepositoryImpl struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) shift.Repository {
	return &shiftRepositoryImpl{db: db}
}

const shiftColumns = `
	s.id, s.name, s.start_time, s.end_time, s.break_minutes, s.is_active,
	s.created_at, s.updated_at`

func scanShift(row pgx.Row) (shift.Shift, error) {
	var sh shift.Shift
	err := row.Scan(
		&sh.ID, &sh.Name, &sh.StartTime, &sh.EndTime, &sh.BreakMinutes, &sh.IsActive,
		&sh.CreatedAt, &sh.UpdatedAt,
	)
	if err != nil {
		return shift.Shift{}, err
	}
	return sh, nil
}

func (r *shiftRepositoryImpl) Create(ctx context.Context, s *shift.Shift) (*shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO shifts (
			id, name, start_time, end_time, break_minutes, is_active, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5, NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		s.Name, s.StartTime, s.EndTime, s.BreakMinutes, s.IsActive,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_shift_name") {
			return nil, shift.ErrNameExists
		}
		return nil, fmt.Errorf("failed to insert shift: %w", err)
	}

	return s, nil
}

func (r *shiftRepositoryImpl) GetByID(ctx context.Context, id string) (*shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftColumns + ` FROM shifts s WHERE s.id = $1`

	sh, err := scanShift(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, shift.ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}

	return &sh, nil
}

func (r *shiftRepositoryImpl) GetByName(ctx context.Context, name string) (*shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftColumns + ` FROM shifts s WHERE LOWER(s.name) = LOWER($1)`

	sh, err := scanShift(q.QueryRow(ctx, query, name))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, shift.ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to get shift by name: %w", err)
	}

	return &sh, nil
}

func (r *shiftRepositoryImpl) List(ctx context.Context, activeOnly bool) ([]shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftColumns + ` FROM shifts s`
	if activeOnly {
		query += ` WHERE s.is_active = TRUE`
	}
	query += ` ORDER BY s.start_time, s.name`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []shift.Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, sh)
	}

	return shifts, rows.Err()
}

func (r *shiftRepositoryImpl) Update(ctx context.Context, s *shift.Shift) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE shifts
		SET name = $1, start_time = $2, end_time = $3, break_minutes = $4,
			is_active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		s.Name, s.StartTime, s.EndTime, s.BreakMinutes, s.IsActive, s.ID,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return shift.ErrShiftNotFound
		}
		if strings.Contains(err.Error(), "uk_shift_name") {
			return shift.ErrNameExists
		}
		return fmt.Errorf("failed to update shift: %w", err)
	}

	return nil
}

func (r *shiftRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return shift.ErrShiftNotFound
	}
	return nil
}

func (r *shiftRepositoryImpl) HasAssignments(ctx context.Context, shiftID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM shift_assignments WHERE shift_id = $1)
	`, shiftID).Scan(&exists)
	return exists, err
}
