package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/payroll"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
)

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.Repository {
	return &payrollRepositoryImpl{db: db}
}

const payrollColumns = `
	pr.id, pr.employee_id, pr.period_month, pr.period_year, pr.basic_salary,
	pr.total_allowances, pr.overtime_pay, pr.total_bonuses, pr.total_deductions,
	pr.tax_amount, pr.insurance_amount, pr.pension_amount, pr.loan_deductions,
	pr.gross_pay, pr.net_pay, pr.allowance_details, pr.deduction_details,
	pr.status, pr.payslip_path, pr.paid_at, pr.paid_by, pr.created_at, pr.updated_at`

func scanPayrollRecord(row pgx.Row, withJoins bool) (payroll.Record, error) {
	var rec payroll.Record
	var allowanceBytes, deductionBytes []byte

	dest := []interface{}{
		&rec.ID, &rec.EmployeeID, &rec.PeriodMonth, &rec.PeriodYear, &rec.BasicSalary,
		&rec.TotalAllowances, &rec.OvertimePay, &rec.TotalBonuses, &rec.TotalDeductions,
		&rec.TaxAmount, &rec.InsuranceAmount, &rec.PensionAmount, &rec.LoanDeductions,
		&rec.GrossPay, &rec.NetPay, &allowanceBytes, &deductionBytes,
		&rec.Status, &rec.PayslipPath, &rec.PaidAt, &rec.PaidBy, &rec.CreatedAt, &rec.UpdatedAt,
	}
	if withJoins {
		dest = append(dest, &rec.EmployeeName, &rec.EmployeeCode, &rec.PositionName)
	}

	if err := row.Scan(dest...); err != nil {
		return payroll.Record{}, err
	}

	_ = json.Unmarshal(allowanceBytes, &rec.AllowanceDetails)
	_ = json.Unmarshal(deductionBytes, &rec.DeductionDetails)

	return rec, nil
}

func (r *payrollRepositoryImpl) Create(ctx context.Context, rec *payroll.Record) (*payroll.Record, error) {
	q := GetQuerier(ctx, r.db)

	allowanceJSON, _ := json.Marshal(rec.AllowanceDetails)
	deductionJSON, _ := json.Marshal(rec.DeductionDetails)

	query := `
		INSERT INTO payrolls (
			id, employee_id, period_month, period_year, basic_salary,
			total_allowances, overtime_pay, total_bonuses, total_deductions,
			tax_amount, insurance_amount, pension_amount, loan_deductions,
			gross_pay, net_pay, allowance_details, deduction_details,
			status, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11, $12,
			$13, $14, $15, $16,
			$17, NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.EmployeeID, rec.PeriodMonth, rec.PeriodYear, rec.BasicSalary,
		rec.TotalAllowances, rec.OvertimePay, rec.TotalBonuses, rec.TotalDeductions,
		rec.TaxAmount, rec.InsuranceAmount, rec.PensionAmount, rec.LoanDeductions,
		rec.GrossPay, rec.NetPay, allowanceJSON, deductionJSON,
		rec.Status,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_payroll_period") {
			return nil, payroll.ErrPeriodExists
		}
		return nil, fmt.Errorf("failed to insert payroll record: %w", err)
	}

	return rec, nil
}

func (r *payrollRepositoryImpl) GetByID(ctx context.Context, id string) (*payroll.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollColumns + `,
			   e.first_name || ' ' || e.last_name AS employee_name,
			   e.employee_code,
			   p.name AS position_name
		FROM payrolls pr
		JOIN employees e ON pr.employee_id = e.id
		LEFT JOIN positions p ON e.position_id = p.id
		WHERE pr.id = $1
	`

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, payroll.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get payroll record: %w", err)
	}

	return &rec, nil
}

func (r *payrollRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (*payroll.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollColumns + `
		FROM payrolls pr
		WHERE pr.id = $1
		FOR UPDATE
	`

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, id), false)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, payroll.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to lock payroll record: %w", err)
	}

	return &rec, nil
}

func (r *payrollRepositoryImpl) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (*payroll.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollColumns + `
		FROM payrolls pr
		WHERE pr.employee_id = $1 AND pr.period_month = $2 AND pr.period_year = $3
	`

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, employeeID, month, year), false)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, payroll.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get payroll record by period: %w", err)
	}

	return &rec, nil
}

func (r *payrollRepositoryImpl) List(ctx context.Context, filter payroll.Filter) ([]payroll.Record, int, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("pr.employee_id = $%d", argIdx))
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if filter.PeriodMonth != 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("pr.period_month = $%d", argIdx))
		args = append(args, filter.PeriodMonth)
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

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM payrolls pr WHERE %s`, whereClause)
	var total int
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT `+payrollColumns+`,
			   e.first_name || ' ' || e.last_name AS employee_name,
			   e.employee_code,
			   p.name AS position_name
		FROM payrolls pr
		JOIN employees e ON pr.employee_id = e.id
		LEFT JOIN positions p ON e.position_id = p.id
		WHERE %s
		ORDER BY pr.period_year DESC, pr.period_month DESC, e.employee_code
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.Record
	for rows.Next() {
		rec, err := scanPayrollRecord(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}

	return records, total, rows.Err()
}

func (r *payrollRepositoryImpl) ExistsForPeriod(ctx context.Context, employeeID string, month, year int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM payrolls
			WHERE employee_id = $1 AND period_month = $2 AND period_year = $3
		)
	`, employeeID, month, year).Scan(&exists)
	return exists, err
}

func (r *payrollRepositoryImpl) SetStatus(ctx context.Context, id string, status payroll.Status) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payrolls SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to set payroll status: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return payroll.ErrRecordNotFound
	}
	return nil
}

func (r *payrollRepositoryImpl) MarkPaid(ctx context.Context, rec *payroll.Record) error {
	q := GetQuerier(ctx, r.db)

	allowanceJSON, _ := json.Marshal(rec.AllowanceDetails)
	deductionJSON, _ := json.Marshal(rec.DeductionDetails)

	query := `
		UPDATE payrolls
		SET total_deductions = $1, loan_deductions = $2, net_pay = $3,
			allowance_details = $4, deduction_details = $5,
			status = 'paid', payslip_path = $6, paid_at = NOW(), paid_by = $7,
			updated_at = NOW()
		WHERE id = $8 AND status = 'approved'
		RETURNING paid_at
	`

	err := q.QueryRow(ctx, query,
		rec.TotalDeductions, rec.LoanDeductions, rec.NetPay,
		allowanceJSON, deductionJSON,
		rec.PayslipPath, rec.PaidBy, rec.ID,
	).Scan(&rec.PaidAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrNotApproved
		}
		return fmt.Errorf("failed to mark payroll paid: %w", err)
	}

	rec.Status = payroll.StatusPaid
	return nil
}

func (r *payrollRepositoryImpl) SetPayslipPath(ctx context.Context, id string, path string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payrolls SET payslip_path = $1, updated_at = NOW() WHERE id = $2
	`, path, id)
	if err != nil {
		return fmt.Errorf("failed to set payslip path: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return payroll.ErrRecordNotFound
	}
	return nil
}
