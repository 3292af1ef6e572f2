package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/approval"
	"github.com/kelola-hr/hrm-backend-go/internal/domain/loan"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
)

type loanRepositoryImpl struct {
	db *database.DB
}

func NewLoanRepository(db *database.DB) loan.Repository {
	return &loanRepositoryImpl{db: db}
}

const loanColumns = `
	l.id, l.employee_id, l.amount, l.interest_rate, l.term_months,
	l.monthly_payment, l.total_amount, l.approved_amount, l.outstanding_balance,
	l.purpose, l.status, l.workflow_id, l.approval_level, l.max_approval_level,
	l.current_approver_id, l.decided_at, l.disbursed_at, l.created_at, l.updated_at`

// loanColumnsBare is loanColumns without the table alias, for RETURNING.
const loanColumnsBare = `
	id, employee_id, amount, interest_rate, term_months,
	monthly_payment, total_amount, approved_amount, outstanding_balance,
	purpose, status, workflow_id, approval_level, max_approval_level,
	current_approver_id, decided_at, disbursed_at, created_at, updated_at`

func scanLoan(row pgx.Row) (loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID, &l.EmployeeID, &l.Amount, &l.InterestRate, &l.TermMonths,
		&l.MonthlyPayment, &l.TotalAmount, &l.ApprovedAmount, &l.OutstandingBalance,
		&l.Purpose, &l.Status, &l.WorkflowID, &l.ApprovalLevel, &l.MaxApprovalLevel,
		&l.CurrentApproverID, &l.DecidedAt, &l.DisbursedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func (r *loanRepositoryImpl) Create(ctx context.Context, l *loan.Loan) (*loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO loans (
			id, employee_id, amount, interest_rate, term_months,
			monthly_payment, total_amount, outstanding_balance,
			purpose, status,
			workflow_id, approval_level, max_approval_level, current_approver_id,
			created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4,
			$5, $6, 0,
			$7, $8,
			$9, $10, $11, $12,
			NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		l.EmployeeID, l.Amount, l.InterestRate, l.TermMonths,
		l.MonthlyPayment, l.TotalAmount,
		l.Purpose, l.Status,
		l.WorkflowID, l.ApprovalLevel, l.MaxApprovalLevel, l.CurrentApproverID,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert loan: %w", err)
	}

	return l, nil
}

func (r *loanRepositoryImpl) GetByID(ctx context.Context, id string) (*loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + loanColumns + `,
			   e.first_name || ' ' || e.last_name AS employee_name
		FROM loans l
		JOIN employees e ON l.employee_id = e.id
		WHERE l.id = $1
	`

	var l loan.Loan
	var employeeName string
	err := q.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.EmployeeID, &l.Amount, &l.InterestRate, &l.TermMonths,
		&l.MonthlyPayment, &l.TotalAmount, &l.ApprovedAmount, &l.OutstandingBalance,
		&l.Purpose, &l.Status, &l.WorkflowID, &l.ApprovalLevel, &l.MaxApprovalLevel,
		&l.CurrentApproverID, &l.DecidedAt, &l.DisbursedAt, &l.CreatedAt, &l.UpdatedAt,
		&employeeName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, loan.ErrLoanNotFound
		}
		return nil, err
	}

	l.EmployeeName = &employeeName
	return &l, nil
}

func (r *loanRepositoryImpl) List(ctx context.Context, filter loan.Filter) ([]loan.Loan, int, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("l.employee_id = $%d", argIdx))
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if filter.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("l.status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM loans l WHERE %s`, whereClause)
	var total int
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count loans: %w", err)
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT `+loanColumns+`,
			   e.first_name || ' ' || e.last_name AS employee_name
		FROM loans l
		JOIN employees e ON l.employee_id = e.id
		WHERE %s
		ORDER BY l.created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	var loans []loan.Loan
	for rows.Next() {
		var l loan.Loan
		var employeeName string
		err := rows.Scan(
			&l.ID, &l.EmployeeID, &l.Amount, &l.InterestRate, &l.TermMonths,
			&l.MonthlyPayment, &l.TotalAmount, &l.ApprovedAmount, &l.OutstandingBalance,
			&l.Purpose, &l.Status, &l.WorkflowID, &l.ApprovalLevel, &l.MaxApprovalLevel,
			&l.CurrentApproverID, &l.DecidedAt, &l.DisbursedAt, &l.CreatedAt, &l.UpdatedAt,
			&employeeName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan loan: %w", err)
		}
		l.EmployeeName = &employeeName
		loans = append(loans, l)
	}

	return loans, total, rows.Err()
}

func (r *loanRepositoryImpl) HasOpenLoan(ctx context.Context, employeeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM loans
			WHERE employee_id = $1
			  AND status IN ('pending', 'approved', 'active')
		)
	`

	var exists bool
	err := q.QueryRow(ctx, query, employeeID).Scan(&exists)
	return exists, err
}

func (r *loanRepositoryImpl) SetApprovedTerms(ctx context.Context, id string, approvedAmount, monthlyPayment, totalAmount decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE loans
		SET approved_amount = $1, monthly_payment = $2, total_amount = $3, updated_at = NOW()
		WHERE id = $4
	`, approvedAmount, monthlyPayment, totalAmount, id)
	if err != nil {
		return fmt.Errorf("failed to set approved loan terms: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return loan.ErrLoanNotFound
	}
	return nil
}

func (r *loanRepositoryImpl) Disburse(ctx context.Context, id string) (*loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE loans
		SET status = 'active',
			outstanding_balance = total_amount,
			disbursed_at = NOW(),
			updated_at = NOW()
		WHERE id = $1 AND status = 'approved'
		RETURNING ` + loanColumnsBare + `
	`

	l, err := scanLoan(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, loan.ErrNotDisbursable
		}
		return nil, fmt.Errorf("failed to disburse loan: %w", err)
	}

	return &l, nil
}

func (r *loanRepositoryImpl) ListActiveByEmployee(ctx context.Context, employeeID string) ([]loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + loanColumns + `
		FROM loans l
		WHERE l.employee_id = $1 AND l.status = 'active'
		ORDER BY l.disbursed_at
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active loans: %w", err)
	}
	defer rows.Close()

	var loans []loan.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan active loan: %w", err)
		}
		loans = append(loans, l)
	}

	return loans, rows.Err()
}

// ApplyRepayment reduces the balance, records the repayment row and flips
// the loan to completed when the balance reaches zero. Run inside the
// payroll payment transaction.
func (r *loanRepositoryImpl) ApplyRepayment(ctx context.Context, rp loan.Repayment) (*loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE loans
		SET outstanding_balance = GREATEST(outstanding_balance - $1, 0),
			status = CASE WHEN outstanding_balance - $1 <= 0 THEN 'completed' ELSE status END,
			updated_at = NOW()
		WHERE id = $2 AND status = 'active'
		RETURNING ` + loanColumnsBare + `
	`

	l, err := scanLoan(q.QueryRow(ctx, query, rp.Amount, rp.LoanID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, loan.ErrNotActive
		}
		return nil, fmt.Errorf("failed to apply loan repayment: %w", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO loan_repayments (id, loan_id, payroll_id, amount, created_at)
		VALUES (uuidv7(), $1, $2, $3, NOW())
	`, rp.LoanID, rp.PayrollID, rp.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to record loan repayment: %w", err)
	}

	return &l, nil
}

func (r *loanRepositoryImpl) MarkDefaulted(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE loans SET status = 'defaulted', updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark loan defaulted: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return loan.ErrNotActive
	}
	return nil
}

// LockForTransition implements approval.TargetStore.
func (r *loanRepositoryImpl) LockForTransition(ctx context.Context, id string) (approval.TargetState, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, status, approval_level, max_approval_level,
			   current_approver_id, workflow_id, updated_at
		FROM loans
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
			return approval.TargetState{}, loan.ErrLoanNotFound
		}
		return approval.TargetState{}, err
	}

	state.EntityType = approval.EntityTypeLoan
	return state, nil
}

// ApplyTransition implements approval.TargetStore.
func (r *loanRepositoryImpl) ApplyTransition(ctx context.Context, tr approval.Transition) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE loans
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
		return false, fmt.Errorf("failed to apply loan transition: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// ListPendingTargets implements approval.PendingScanner.
func (r *loanRepositoryImpl) ListPendingTargets(ctx context.Context) ([]approval.TargetState, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, status, approval_level, max_approval_level,
			   current_approver_id, workflow_id, updated_at
		FROM loans
		WHERE status = 'pending'
		ORDER BY updated_at
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending loans: %w", err)
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
			return nil, fmt.Errorf("failed to scan pending loan: %w", err)
		}
		state.EntityType = approval.EntityTypeLoan
		states = append(states, state)
	}

	return states, rows.Err()
}
