package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/shift"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
)

type shiftAssignmentRepositoryImpl struct {
	db *database.DB
}

func NewShiftAssignmentRepository(db *database.DB) shift.AssignmentRepository {
	return &shiftAssignmentRepositoryImpl{db: db}
}

const shiftAssignmentColumns = `
	sa.id, sa.employee_id, sa.shift_id, sa.work_date, sa.created_at,
	s.name AS shift_name, s.start_time, s.end_time,
	e.first_name || ' ' || e.last_name AS employee_name`

func scanShiftAssignment(row pgx.Row) (shift.Assignment, error) {
	var a shift.Assignment
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.ShiftID, &a.WorkDate, &a.CreatedAt,
		&a.ShiftName, &a.StartTime, &a.EndTime,
		&a.EmployeeName,
	)
	if err != nil {
		return shift.Assignment{}, err
	}
	return a, nil
}

func (r *shiftAssignmentRepositoryImpl) Create(ctx context.Context, a *shift.Assignment) (*shift.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO shift_assignments (
			id, employee_id, shift_id, work_date, created_at
		) VALUES (
			uuidv7(), $1, $2, $3, NOW()
		) RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query, a.EmployeeID, a.ShiftID, a.WorkDate).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_shift_assignment_employee_date") {
			return nil, shift.ErrDateAssigned
		}
		return nil, fmt.Errorf("failed to insert shift assignment: %w", err)
	}

	return a, nil
}

func (r *shiftAssignmentRepositoryImpl) GetByID(ctx context.Context, id string) (*shift.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + shiftAssignmentColumns + `
		FROM shift_assignments sa
		JOIN shifts s ON sa.shift_id = s.id
		JOIN employees e ON sa.employee_id = e.id
		WHERE sa.id = $1
	`

	a, err := scanShiftAssignment(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, shift.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get shift assignment: %w", err)
	}

	return &a, nil
}

func (r *shiftAssignmentRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time) (*shift.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + shiftAssignmentColumns + `
		FROM shift_assignments sa
		JOIN shifts s ON sa.shift_id = s.id
		JOIN employees e ON sa.employee_id = e.id
		WHERE sa.employee_id = $1 AND sa.work_date = $2
	`

	a, err := scanShiftAssignment(q.QueryRow(ctx, query, employeeID, workDate))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shift assignment by date: %w", err)
	}

	return &a, nil
}

func (r *shiftAssignmentRepositoryImpl) List(ctx context.Context, filter shift.AssignmentFilter) ([]shift.Assignment, int, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("sa.employee_id = $%d", argIdx))
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if filter.ShiftID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("sa.shift_id = $%d", argIdx))
		args = append(args, filter.ShiftID)
		argIdx++
	}
	if filter.DateFrom != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("sa.work_date >= $%d", argIdx))
		args = append(args, *filter.DateFrom)
		argIdx++
	}
	if filter.DateTo != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("sa.work_date <= $%d", argIdx))
		args = append(args, *filter.DateTo)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM shift_assignments sa WHERE %s`, whereClause)
	var total int
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count shift assignments: %w", err)
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT `+shiftAssignmentColumns+`
		FROM shift_assignments sa
		JOIN shifts s ON sa.shift_id = s.id
		JOIN employees e ON sa.employee_id = e.id
		WHERE %s
		ORDER BY sa.work_date DESC, employee_name
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query shift assignments: %w", err)
	}
	defer rows.Close()

	var assignments []shift.Assignment
	for rows.Next() {
		a, err := scanShiftAssignment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan shift assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, total, rows.Err()
}

func (r *shiftAssignmentRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM shift_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift assignment: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return shift.ErrAssignmentNotFound
	}
	return nil
}
