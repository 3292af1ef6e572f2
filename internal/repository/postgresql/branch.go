package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/branch"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
)

type branchRepositoryImpl struct {
	db *database.DB
}

func NewBranchRepository(db *database.DB) branch.BranchRepository {
	return &branchRepositoryImpl{db: db}
}

const branchColumns = `b.id, b.name, b.address, b.timezone, b.is_active, b.created_at, b.updated_at`

func scanBranch(row pgx.Row) (branch.Branch, error) {
	var b branch.Branch
	err := row.Scan(&b.ID, &b.Name, &b.Address, &b.Timezone, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return branch.Branch{}, err
	}
	return b, nil
}

func (r *branchRepositoryImpl) Create(ctx context.Context, b *branch.Branch) (*branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO branches (id, name, address, timezone, is_active, created_at, updated_at)
		VALUES (uuidv7(), $1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, b.Name, b.Address, b.Timezone, b.IsActive).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_branch_name") {
			return nil, branch.ErrBranchNameExists
		}
		return nil, fmt.Errorf("failed to insert branch: %w", err)
	}

	return b, nil
}

func (r *branchRepositoryImpl) GetByID(ctx context.Context, id string) (*branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + branchColumns + ` FROM branches b WHERE b.id = $1`

	b, err := scanBranch(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, branch.ErrBranchNotFound
		}
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}

	return &b, nil
}

func (r *branchRepositoryImpl) GetByName(ctx context.Context, name string) (*branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + branchColumns + ` FROM branches b WHERE LOWER(b.name) = LOWER($1)`

	b, err := scanBranch(q.QueryRow(ctx, query, name))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, branch.ErrBranchNotFound
		}
		return nil, fmt.Errorf("failed to get branch by name: %w", err)
	}

	return &b, nil
}

func (r *branchRepositoryImpl) List(ctx context.Context, activeOnly bool) ([]branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + branchColumns + ` FROM branches b`
	if activeOnly {
		query += ` WHERE b.is_active = TRUE`
	}
	query += ` ORDER BY b.name`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query branches: %w", err)
	}
	defer rows.Close()

	var branches []branch.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, b)
	}

	return branches, rows.Err()
}

func (r *branchRepositoryImpl) Update(ctx context.Context, b *branch.Branch) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE branches
		SET name = $1, address = $2, timezone = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query, b.Name, b.Address, b.Timezone, b.ID).Scan(&b.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return branch.ErrBranchNotFound
		}
		if strings.Contains(err.Error(), "uk_branch_name") {
			return branch.ErrBranchNameExists
		}
		return fmt.Errorf("failed to update branch: %w", err)
	}

	return nil
}

func (r *branchRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE branches SET is_active = $1, updated_at = NOW() WHERE id = $2
	`, active, id)
	if err != nil {
		return fmt.Errorf("failed to set branch active flag: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return branch.ErrBranchNotFound
	}
	return nil
}

func (r *branchRepositoryImpl) InUse(ctx context.Context, id string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var inUse bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM departments WHERE branch_id = $1)
			OR EXISTS (SELECT 1 FROM employees WHERE branch_id = $1)
	`, id).Scan(&inUse)
	return inUse, err
}
