package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/employee"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	e.id, e.employee_code, e.first_name, e.last_name, e.email, e.phone,
	e.hire_date, e.department_id, e.position_id, e.branch_id, e.manager_id,
	e.base_salary, e.is_active, e.created_at, e.updated_at`

func scanEmployee(row pgx.Row, withJoins bool) (employee.Employee, error) {
	var emp employee.Employee

	dest := []interface{}{
		&emp.ID, &emp.EmployeeCode, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone,
		&emp.HireDate, &emp.DepartmentID, &emp.PositionID, &emp.BranchID, &emp.ManagerID,
		&emp.BaseSalary, &emp.IsActive, &emp.CreatedAt, &emp.UpdatedAt,
	}
	if withJoins {
		dest = append(dest, &emp.DepartmentName, &emp.PositionName, &emp.BranchName)
	}

	if err := row.Scan(dest...); err != nil {
		return employee.Employee{}, err
	}
	return emp, nil
}

func (r *employeeRepositoryImpl) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees (
			id, employee_code, first_name, last_name, email, phone,
			hire_date, department_id, position_id, branch_id, manager_id,
			base_salary, is_active, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		e.EmployeeCode, e.FirstName, e.LastName, e.Email, e.Phone,
		e.HireDate, e.DepartmentID, e.PositionID, e.BranchID, e.ManagerID,
		e.BaseSalary, e.IsActive,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_employee_code") {
			return nil, employee.ErrEmployeeCodeExists
		}
		if strings.Contains(err.Error(), "uk_employee_email") {
			return nil, employee.ErrEmailExists
		}
		return nil, fmt.Errorf("failed to insert employee: %w", err)
	}

	return e, nil
}

func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (*employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `,
			   d.name AS department_name,
			   p.name AS position_name,
			   b.name AS branch_name
		FROM employees e
		LEFT JOIN departments d ON e.department_id = d.id
		LEFT JOIN positions p ON e.position_id = p.id
		LEFT JOIN branches b ON e.branch_id = b.id
		WHERE e.id = $1
	`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	return &emp, nil
}

func (r *employeeRepositoryImpl) GetByCode(ctx context.Context, code string) (*employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `,
			   d.name AS department_name,
			   p.name AS position_name,
			   b.name AS branch_name
		FROM employees e
		LEFT JOIN departments d ON e.department_id = d.id
		LEFT JOIN positions p ON e.position_id = p.id
		LEFT JOIN branches b ON e.branch_id = b.id
		WHERE e.employee_code = $1
	`

	emp, err := scanEmployee(q.QueryRow(ctx, query, code), true)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee by code: %w", err)
	}

	return &emp, nil
}

func (r *employeeRepositoryImpl) List(ctx context.Context, filter employee.ListFilter) ([]employee.Employee, int, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.DepartmentID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("e.department_id = $%d", argIdx))
		args = append(args, filter.DepartmentID)
		argIdx++
	}
	if filter.PositionID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("e.position_id = $%d", argIdx))
		args = append(args, filter.PositionID)
		argIdx++
	}
	if filter.BranchID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("e.branch_id = $%d", argIdx))
		args = append(args, filter.BranchID)
		argIdx++
	}
	if filter.IsActive != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("e.is_active = $%d", argIdx))
		args = append(args, *filter.IsActive)
		argIdx++
	}
	if filter.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(e.first_name || ' ' || e.last_name ILIKE $%d OR e.employee_code ILIKE $%d OR e.email ILIKE $%d)",
			argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM employees e WHERE %s`, whereClause)
	var total int
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT `+employeeColumns+`,
			   d.name AS department_name,
			   p.name AS position_name,
			   b.name AS branch_name
		FROM employees e
		LEFT JOIN departments d ON e.department_id = d.id
		LEFT JOIN positions p ON e.position_id = p.id
		LEFT JOIN branches b ON e.branch_id = b.id
		WHERE %s
		ORDER BY e.employee_code
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	return employees, total, rows.Err()
}

func (r *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		WHERE e.is_active = TRUE
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan active employee: %w", err)
		}
		employees = append(employees, emp)
	}

	return employees, rows.Err()
}

func (r *employeeRepositoryImpl) Update(ctx context.Context, e *employee.Employee) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET employee_code = $1, first_name = $2, last_name = $3, email = $4,
			phone = $5, hire_date = $6, department_id = $7, position_id = $8,
			branch_id = $9, manager_id = $10, base_salary = $11, updated_at = NOW()
		WHERE id = $12
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		e.EmployeeCode, e.FirstName, e.LastName, e.Email,
		e.Phone, e.HireDate, e.DepartmentID, e.PositionID,
		e.BranchID, e.ManagerID, e.BaseSalary, e.ID,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.ErrEmployeeNotFound
		}
		if strings.Contains(err.Error(), "uk_employee_code") {
			return employee.ErrEmployeeCodeExists
		}
		if strings.Contains(err.Error(), "uk_employee_email") {
			return employee.ErrEmailExists
		}
		return fmt.Errorf("failed to update employee: %w", err)
	}

	return nil
}

func (r *employeeRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE employees SET is_active = $1, updated_at = NOW() WHERE id = $2
	`, active, id)
	if err != nil {
		return fmt.Errorf("failed to set employee active flag: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepositoryImpl) ExistsByCodeOrEmail(ctx context.Context, code, email, excludeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM employees
			WHERE (employee_code = $1 OR email = $2)
			  AND ($3 = '' OR id <> $3::uuid)
		)
	`, code, email, excludeID).Scan(&exists)
	return exists, err
}

func (r *employeeRepositoryImpl) FirstActiveByPosition(ctx context.Context, positionID string) (*employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		WHERE e.position_id = $1 AND e.is_active = TRUE
		ORDER BY e.hire_date, e.id
		LIMIT 1
	`

	emp, err := scanEmployee(q.QueryRow(ctx, query, positionID), false)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get employee by position: %w", err)
	}

	return &emp, nil
}

func (r *employeeRepositoryImpl) LockByID(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	var locked string
	err := q.QueryRow(ctx, `SELECT id FROM employees WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to lock employee row: %w", err)
	}

	return nil
}
