package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/approval"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/leave"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.RequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	lr.id, lr.employee_id, lr.leave_type, lr.start_date, lr.end_date,
	lr.duration_type, lr.total_days, lr.reason, lr.status,
	lr.workflow_id, lr.approval_level, lr.max_approval_level,
	lr.current_approver_id, lr.decided_at, lr.created_at, lr.updated_at`

func scanLeaveRequest(row pgx.Row) (leave.Request, error) {
	var req leave.Request
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.Type, &req.StartDate, &req.EndDate,
		&req.DurationType, &req.TotalDays, &req.Reason, &req.Status,
		&req.WorkflowID, &req.ApprovalLevel, &req.MaxApprovalLevel,
		&req.CurrentApproverID, &req.DecidedAt, &req.CreatedAt, &req.UpdatedAt,
	)
	return req, err
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			id, employee_id, leave_type,
			start_date, end_date, duration_type, total_days,
			reason, status,
			workflow_id, approval_level, max_approval_level, current_approver_id,
			decided_at, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2,
			$3, $4, $5, $6,
			$7, $8,
			$9, $10, $11, $12,
			$13, NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.EmployeeID, request.Type,
		request.StartDate, request.EndDate, request.DurationType, request.TotalDays,
		request.Reason, request.Status,
		request.WorkflowID, request.ApprovalLevel, request.MaxApprovalLevel, request.CurrentApproverID,
		request.DecidedAt,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)

	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to insert leave request: %w", err)
	}

	return request, nil
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `,
			   e.first_name || ' ' || e.last_name AS employee_name
		FROM leave_requests lr
		JOIN employees e ON lr.employee_id = e.id
		WHERE lr.id = $1
	`

	var req leave.Request
	var employeeName string

	err := q.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.EmployeeID, &req.Type, &req.StartDate, &req.EndDate,
		&req.DurationType, &req.TotalDays, &req.Reason, &req.Status,
		&req.WorkflowID, &req.ApprovalLevel, &req.MaxApprovalLevel,
		&req.CurrentApproverID, &req.DecidedAt, &req.CreatedAt, &req.UpdatedAt,
		&employeeName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.Request{}, leave.ErrRequestNotFound
		}
		return leave.Request{}, err
	}

	req.EmployeeName = &employeeName
	return req, nil
}

func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.RequestFilter) ([]leave.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("lr.employee_id = $%d", argIdx))
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if filter.Type != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("lr.leave_type = $%d", argIdx))
		args = append(args, filter.Type)
		argIdx++
	}
	if filter.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("lr.status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.CurrentApproverID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("lr.current_approver_id = $%d", argIdx))
		args = append(args, filter.CurrentApproverID)
		argIdx++
	}
	if filter.StartDate != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("lr.start_date >= $%d", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("lr.end_date <= $%d", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM leave_requests lr
		WHERE %s
	`, whereClause)

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT `+leaveRequestColumns+`,
			   e.first_name || ' ' || e.last_name AS employee_name
		FROM leave_requests lr
		JOIN employees e ON lr.employee_id = e.id
		WHERE %s
		ORDER BY lr.created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		var req leave.Request
		var employeeName string

		err := rows.Scan(
			&req.ID, &req.EmployeeID, &req.Type, &req.StartDate, &req.EndDate,
			&req.DurationType, &req.TotalDays, &req.Reason, &req.Status,
			&req.WorkflowID, &req.ApprovalLevel, &req.MaxApprovalLevel,
			&req.CurrentApproverID, &req.DecidedAt, &req.CreatedAt, &req.UpdatedAt,
			&employeeName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request: %w", err)
		}

		req.EmployeeName = &employeeName
		requests = append(requests, req)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return requests, total, nil
}

func (r *leaveRequestRepositoryImpl) ListOverlapping(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) ([]leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		WHERE lr.employee_id = $1
		  AND lr.status IN ('pending', 'approved')
		  AND lr.start_date <= $3
		  AND lr.end_date >= $2
	`
	args := []interface{}{employeeID, start, end}

	if excludeID != nil {
		query += " AND lr.id <> $4"
		args = append(args, *excludeID)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping leave: %w", err)
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overlapping leave: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

func (r *leaveRequestRepositoryImpl) SumDaysByTypeInYear(ctx context.Context, employeeID string, year int, statuses []leave.Status) (map[leave.Type]float64, error) {
	q := GetQuerier(ctx, r.db)

	statusStrs := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrs[i] = string(s)
	}

	query := `
		SELECT lr.leave_type, COALESCE(SUM(lr.total_days), 0)
		FROM leave_requests lr
		WHERE lr.employee_id = $1
		  AND lr.status = ANY($2)
		  AND EXTRACT(YEAR FROM lr.start_date) = $3
		GROUP BY lr.leave_type
	`

	rows, err := q.Query(ctx, query, employeeID, statusStrs, year)
	if err != nil {
		return nil, fmt.Errorf("failed to sum leave days: %w", err)
	}
	defer rows.Close()

	sums := make(map[leave.Type]float64)
	for rows.Next() {
		var leaveType leave.Type
		var days float64
		if err := rows.Scan(&leaveType, &days); err != nil {
			return nil, fmt.Errorf("failed to scan leave day sum: %w", err)
		}
		sums[leaveType] = days
	}

	return sums, rows.Err()
}

// LockForTransition implements approval.TargetStore. Must run inside a
// transaction; the row lock is held until commit.
func (r *leaveRequestRepositoryImpl) LockForTransition(ctx context.Context, id string) (approval.TargetState, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, status, approval_level, max_approval_level,
			   current_approver_id, workflow_id, updated_at
		FROM leave_requests
		WHERE id = $1
		FOR UPDATE
	`

	var state approval.TargetState
	err := q.QueryRow(ctx, query, id).Scan(
		&state.ID, &state.EmployeeID, &state.Status,
		&state.ApprovalLevel, &state.MaxApprovalLevel,
		&state.CurrentApproverID, &state.WorkflowID, &state.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return approval.TargetState{}, leave.ErrRequestNotFound
		}
		return approval.TargetState{}, err
	}

	state.EntityType = approval.EntityTypeLeave
	return state, nil
}

// ApplyTransition implements approval.TargetStore. The status and level
// guards make concurrent deciders lose cleanly: the second UPDATE matches
// zero rows.
func (r *leaveRequestRepositoryImpl) ApplyTransition(ctx context.Context, tr approval.Transition) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $1,
			approval_level = $2,
			current_approver_id = $3,
			decided_at = COALESCE($4, decided_at),
			updated_at = NOW()
		WHERE id = $5
		  AND status = $6
		  AND approval_level = $7
	`

	tag, err := q.Exec(ctx, query,
		tr.ToStatus, tr.ToLevel, tr.CurrentApproverID, tr.DecidedAt,
		tr.ID, tr.FromStatus, tr.FromLevel,
	)
	if err != nil {
		return false, fmt.Errorf("failed to apply leave transition: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// ListPendingTargets implements approval.PendingScanner.
func (r *leaveRequestRepositoryImpl) ListPendingTargets(ctx context.Context) ([]approval.TargetState, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, status, approval_level, max_approval_level,
			   current_approver_id, workflow_id, updated_at
		FROM leave_requests
		WHERE status = 'pending'
		ORDER BY updated_at
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending leave requests: %w", err)
	}
	defer rows.Close()

	var states []approval.TargetState
	for rows.Next() {
		var state approval.TargetState
		err := rows.Scan(
			&state.ID, &state.EmployeeID, &state.Status,
			&state.ApprovalLevel, &state.MaxApprovalLevel,
			&state.CurrentApproverID, &state.WorkflowID, &state.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending leave request: %w", err)
		}
		state.EntityType = approval.EntityTypeLeave
		states = append(states, state)
	}

	return states, rows.Err()
}
