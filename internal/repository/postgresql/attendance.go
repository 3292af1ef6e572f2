package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/attendance"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `
	a.id, a.employee_id, a.date, a.check_in_time, a.check_out_time,
	a.total_hours, a.overtime_hours, a.notes, a.created_at, a.updated_at`

func scanAttendance(row pgx.Row, withJoins bool) (attendance.Attendance, error) {
	var att attendance.Attendance

	dest := []interface{}{
		&att.ID, &att.EmployeeID, &att.Date, &att.CheckInTime, &att.CheckOutTime,
		&att.TotalHours, &att.OvertimeHours, &att.Notes, &att.CreatedAt, &att.UpdatedAt,
	}
	if withJoins {
		dest = append(dest, &att.EmployeeName, &att.EmployeeCode)
	}

	if err := row.Scan(dest...); err != nil {
		return attendance.Attendance{}, err
	}
	return att, nil
}

func (r *attendanceRepositoryImpl) Create(ctx context.Context, a *attendance.Attendance) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (
			id, employee_id, date, check_in_time, notes, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		a.EmployeeID, a.Date, a.CheckInTime, a.Notes,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_attendance_employee_date") {
			return nil, attendance.ErrAlreadyCheckedIn
		}
		return nil, fmt.Errorf("failed to insert attendance: %w", err)
	}

	return a, nil
}

func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `,
			   e.first_name || ' ' || e.last_name AS employee_name,
			   e.employee_code
		FROM attendances a
		JOIN employees e ON a.employee_id = e.id
		WHERE a.id = $1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, attendance.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}

	return &att, nil
}

func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1 AND a.date = $2
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date), false)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by date: %w", err)
	}

	return &att, nil
}

func (r *attendanceRepositoryImpl) Update(ctx context.Context, a *attendance.Attendance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET check_in_time = $1, check_out_time = $2, total_hours = $3,
			overtime_hours = $4, notes = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		a.CheckInTime, a.CheckOutTime, a.TotalHours, a.OvertimeHours, a.Notes, a.ID,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.ErrNotFound
		}
		return fmt.Errorf("failed to update attendance: %w", err)
	}

	return nil
}

func (r *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.Filter) ([]attendance.Attendance, int, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("a.employee_id = $%d", argIdx))
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if filter.DateFrom != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("a.date >= $%d", argIdx))
		args = append(args, *filter.DateFrom)
		argIdx++
	}
	if filter.DateTo != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("a.date <= $%d", argIdx))
		args = append(args, *filter.DateTo)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM attendances a WHERE %s`, whereClause)
	var total int
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT `+attendanceColumns+`,
			   e.first_name || ' ' || e.last_name AS employee_name,
			   e.employee_code
		FROM attendances a
		JOIN employees e ON a.employee_id = e.id
		WHERE %s
		ORDER BY a.date DESC, a.check_in_time DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}

	return attendances, total, rows.Err()
}

func (r *attendanceRepositoryImpl) ListOpenBefore(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.check_out_time IS NULL AND a.date < $1
		ORDER BY a.date, a.check_in_time
	`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query open attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan open attendance: %w", err)
		}
		attendances = append(attendances, att)
	}

	return attendances, rows.Err()
}

func (r *attendanceRepositoryImpl) SummarizeOvertime(ctx context.Context, month, year int) (map[string]float64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.employee_id, COALESCE(SUM(a.overtime_hours), 0)
		FROM attendances a
		WHERE EXTRACT(MONTH FROM a.date) = $1
		  AND EXTRACT(YEAR FROM a.date) = $2
		  AND a.overtime_hours IS NOT NULL
		GROUP BY a.employee_id
	`

	rows, err := q.Query(ctx, query, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize overtime: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var employeeID string
		var hours float64
		if err := rows.Scan(&employeeID, &hours); err != nil {
			return nil, fmt.Errorf("failed to scan overtime summary: %w", err)
		}
		totals[employeeID] = hours
	}

	return totals, rows.Err()
}
