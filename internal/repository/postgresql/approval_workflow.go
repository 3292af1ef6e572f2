package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/approval"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
)

type approvalWorkflowRepositoryImpl struct {
	db *database.DB
}

func NewApprovalWorkflowRepository(db *database.DB) approval.WorkflowRepository {
	return &approvalWorkflowRepositoryImpl{db: db}
}

// Create inserts the workflow and its steps. Callers wanting atomicity wrap
// the call in WithTransaction.
func (r *approvalWorkflowRepositoryImpl) Create(ctx context.Context, workflow approval.Workflow) (approval.Workflow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO approval_workflows (
			id, name, entity_type, department_id, position_id,
			min_amount, max_amount, is_active, settings,
			created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4,
			$5, $6, $7, $8,
			NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		workflow.Name, workflow.EntityType, workflow.DepartmentID, workflow.PositionID,
		workflow.MinAmount, workflow.MaxAmount, workflow.IsActive, workflow.Settings,
	).Scan(&workflow.ID, &workflow.CreatedAt, &workflow.UpdatedAt)
	if err != nil {
		return approval.Workflow{}, fmt.Errorf("failed to insert approval workflow: %w", err)
	}

	steps, err := r.insertSteps(ctx, workflow.ID, workflow.Steps)
	if err != nil {
		return approval.Workflow{}, err
	}
	workflow.Steps = steps

	return workflow, nil
}

func (r *approvalWorkflowRepositoryImpl) insertSteps(ctx context.Context, workflowID string, steps []approval.Step) ([]approval.Step, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO approval_steps (
			id, workflow_id, step_order, approver_type,
			approver_id, position_id, role_id, department_id,
			is_required, can_delegate, can_skip, auto_approve, auto_approve_after_hours,
			created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	inserted := make([]approval.Step, 0, len(steps))
	for _, step := range steps {
		step.WorkflowID = workflowID
		err := q.QueryRow(ctx, query,
			workflowID, step.StepOrder, step.ApproverType,
			step.ApproverID, step.PositionID, step.RoleID, step.DepartmentID,
			step.IsRequired, step.CanDelegate, step.CanSkip, step.AutoApprove, step.AutoApproveAfterHours,
		).Scan(&step.ID, &step.CreatedAt, &step.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert approval step %d: %w", step.StepOrder, err)
		}
		inserted = append(inserted, step)
	}

	return inserted, nil
}

const approvalWorkflowColumns = `
	w.id, w.name, w.entity_type, w.department_id, w.position_id,
	w.min_amount, w.max_amount, w.is_active, w.settings, w.created_at, w.updated_at`

func scanWorkflow(row pgx.Row) (approval.Workflow, error) {
	var w approval.Workflow
	err := row.Scan(
		&w.ID, &w.Name, &w.EntityType, &w.DepartmentID, &w.PositionID,
		&w.MinAmount, &w.MaxAmount, &w.IsActive, &w.Settings, &w.CreatedAt, &w.UpdatedAt,
	)
	return w, err
}

func (r *approvalWorkflowRepositoryImpl) GetByID(ctx context.Context, id string) (approval.Workflow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + approvalWorkflowColumns + `
		FROM approval_workflows w
		WHERE w.id = $1
	`

	workflow, err := scanWorkflow(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return approval.Workflow{}, approval.ErrWorkflowNotFound
		}
		return approval.Workflow{}, err
	}

	steps, err := r.stepsByWorkflowIDs(ctx, []string{workflow.ID})
	if err != nil {
		return approval.Workflow{}, err
	}
	workflow.Steps = steps[workflow.ID]

	return workflow, nil
}

// stepsByWorkflowIDs loads the steps of several workflows in one query,
// sorted by step_order.
func (r *approvalWorkflowRepositoryImpl) stepsByWorkflowIDs(ctx context.Context, workflowIDs []string) (map[string][]approval.Step, error) {
	if len(workflowIDs) == 0 {
		return map[string][]approval.Step{}, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, workflow_id, step_order, approver_type,
			   approver_id, position_id, role_id, department_id,
			   is_required, can_delegate, can_skip, auto_approve, auto_approve_after_hours,
			   created_at, updated_at
		FROM approval_steps
		WHERE workflow_id = ANY($1)
		ORDER BY workflow_id, step_order
	`

	rows, err := q.Query(ctx, query, workflowIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval steps: %w", err)
	}
	defer rows.Close()

	steps := make(map[string][]approval.Step)
	for rows.Next() {
		var s approval.Step
		err := rows.Scan(
			&s.ID, &s.WorkflowID, &s.StepOrder, &s.ApproverType,
			&s.ApproverID, &s.PositionID, &s.RoleID, &s.DepartmentID,
			&s.IsRequired, &s.CanDelegate, &s.CanSkip, &s.AutoApprove, &s.AutoApproveAfterHours,
			&s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval step: %w", err)
		}
		steps[s.WorkflowID] = append(steps[s.WorkflowID], s)
	}

	return steps, rows.Err()
}

func (r *approvalWorkflowRepositoryImpl) List(ctx context.Context, filter approval.ListFilter) ([]approval.Workflow, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EntityType != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("w.entity_type = $%d", argIdx))
		args = append(args, filter.EntityType)
		argIdx++
	}
	if filter.IsActive != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("w.is_active = $%d", argIdx))
		args = append(args, *filter.IsActive)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM approval_workflows w WHERE %s`, whereClause)
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count approval workflows: %w", err)
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT `+approvalWorkflowColumns+`
		FROM approval_workflows w
		WHERE %s
		ORDER BY w.created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query approval workflows: %w", err)
	}
	defer rows.Close()

	var workflows []approval.Workflow
	var ids []string
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan approval workflow: %w", err)
		}
		workflows = append(workflows, w)
		ids = append(ids, w.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	steps, err := r.stepsByWorkflowIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range workflows {
		workflows[i].Steps = steps[workflows[i].ID]
	}

	return workflows, total, nil
}

func (r *approvalWorkflowRepositoryImpl) ListActiveByEntityType(ctx context.Context, entityType approval.EntityType) ([]approval.Workflow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + approvalWorkflowColumns + `
		FROM approval_workflows w
		WHERE w.entity_type = $1 AND w.is_active = TRUE
		ORDER BY w.created_at, w.id
	`

	rows, err := q.Query(ctx, query, entityType)
	if err != nil {
		return nil, fmt.Errorf("failed to query active workflows: %w", err)
	}
	defer rows.Close()

	var workflows []approval.Workflow
	var ids []string
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan active workflow: %w", err)
		}
		workflows = append(workflows, w)
		ids = append(ids, w.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	steps, err := r.stepsByWorkflowIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range workflows {
		workflows[i].Steps = steps[workflows[i].ID]
	}

	return workflows, nil
}

// Update rewrites the workflow row and replaces its steps wholesale.
func (r *approvalWorkflowRepositoryImpl) Update(ctx context.Context, workflow approval.Workflow) (approval.Workflow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE approval_workflows
		SET name = $1, department_id = $2, position_id = $3,
			min_amount = $4, max_amount = $5, is_active = $6, settings = $7,
			updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		workflow.Name, workflow.DepartmentID, workflow.PositionID,
		workflow.MinAmount, workflow.MaxAmount, workflow.IsActive, workflow.Settings,
		workflow.ID,
	).Scan(&workflow.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return approval.Workflow{}, approval.ErrWorkflowNotFound
		}
		return approval.Workflow{}, fmt.Errorf("failed to update approval workflow: %w", err)
	}

	if _, err := q.Exec(ctx, `DELETE FROM approval_steps WHERE workflow_id = $1`, workflow.ID); err != nil {
		return approval.Workflow{}, fmt.Errorf("failed to clear approval steps: %w", err)
	}

	steps, err := r.insertSteps(ctx, workflow.ID, workflow.Steps)
	if err != nil {
		return approval.Workflow{}, err
	}
	workflow.Steps = steps

	return workflow, nil
}

func (r *approvalWorkflowRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE approval_workflows SET is_active = $1, updated_at = NOW() WHERE id = $2
	`, active, id)
	if err != nil {
		return fmt.Errorf("failed to toggle approval workflow: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return approval.ErrWorkflowNotFound
	}
	return nil
}

func (r *approvalWorkflowRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM approval_steps WHERE workflow_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete approval steps: %w", err)
	}

	tag, err := q.Exec(ctx, `DELETE FROM approval_workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete approval workflow: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return approval.ErrWorkflowNotFound
	}
	return nil
}
