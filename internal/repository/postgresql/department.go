package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/department"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
)

type departmentRepositoryImpl struct {
	db *database.DB
}

func NewDepartmentRepository(db *database.DB) department.DepartmentRepository {
	return &departmentRepositoryImpl{db: db}
}

const departmentColumns = `
	d.id, d.name, d.branch_id, d.head_employee_id, d.is_active, d.created_at, d.updated_at`

func scanDepartment(row pgx.Row, withJoins bool) (department.Department, error) {
	var dep department.Department

	dest := []interface{}{
		&dep.ID, &dep.Name, &dep.BranchID, &dep.HeadEmployeeID, &dep.IsActive,
		&dep.CreatedAt, &dep.UpdatedAt,
	}
	if withJoins {
		dest = append(dest, &dep.BranchName, &dep.HeadName)
	}

	if err := row.Scan(dest...); err != nil {
		return department.Department{}, err
	}
	return dep, nil
}

func (r *departmentRepositoryImpl) Create(ctx context.Context, d *department.Department) (*department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO departments (id, name, branch_id, head_employee_id, is_active, created_at, updated_at)
		VALUES (uuidv7(), $1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, d.Name, d.BranchID, d.HeadEmployeeID, d.IsActive).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_department_name") {
			return nil, department.ErrDepartmentNameExists
		}
		return nil, fmt.Errorf("failed to insert department: %w", err)
	}

	return d, nil
}

func (r *departmentRepositoryImpl) GetByID(ctx context.Context, id string) (*department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + departmentColumns + `,
			   b.name AS branch_name,
			   h.first_name || ' ' || h.last_name AS head_name
		FROM departments d
		LEFT JOIN branches b ON d.branch_id = b.id
		LEFT JOIN employees h ON d.head_employee_id = h.id
		WHERE d.id = $1
	`

	dep, err := scanDepartment(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, department.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to get department: %w", err)
	}

	return &dep, nil
}

func (r *departmentRepositoryImpl) GetByName(ctx context.Context, name string) (*department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + departmentColumns + `
		FROM departments d
		WHERE LOWER(d.name) = LOWER($1)
	`

	dep, err := scanDepartment(q.QueryRow(ctx, query, name), false)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, department.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to get department by name: %w", err)
	}

	return &dep, nil
}

func (r *departmentRepositoryImpl) List(ctx context.Context, activeOnly bool) ([]department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + departmentColumns + `,
			   b.name AS branch_name,
			   h.first_name || ' ' || h.last_name AS head_name
		FROM departments d
		LEFT JOIN branches b ON d.branch_id = b.id
		LEFT JOIN employees h ON d.head_employee_id = h.id`
	if activeOnly {
		query += ` WHERE d.is_active = TRUE`
	}
	query += ` ORDER BY d.name`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	var departments []department.Department
	for rows.Next() {
		dep, err := scanDepartment(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, dep)
	}

	return departments, rows.Err()
}

func (r *departmentRepositoryImpl) Update(ctx context.Context, d *department.Department) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE departments
		SET name = $1, branch_id = $2, head_employee_id = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query, d.Name, d.BranchID, d.HeadEmployeeID, d.ID).Scan(&d.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return department.ErrDepartmentNotFound
		}
		if strings.Contains(err.Error(), "uk_department_name") {
			return department.ErrDepartmentNameExists
		}
		return fmt.Errorf("failed to update department: %w", err)
	}

	return nil
}

func (r *departmentRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE departments SET is_active = $1, updated_at = NOW() WHERE id = $2
	`, active, id)
	if err != nil {
		return fmt.Errorf("failed to set department active flag: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return department.ErrDepartmentNotFound
	}
	return nil
}

func (r *departmentRepositoryImpl) InUse(ctx context.Context, id string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var inUse bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM positions WHERE department_id = $1)
			OR EXISTS (SELECT 1 FROM employees WHERE department_id = $1)
	`, id).Scan(&inUse)
	return inUse, err
}
