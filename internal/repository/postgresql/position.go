package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/master/position"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
)

type positionRepositoryImpl struct {
	db *database.DB
}

func NewPositionRepository(db *database.DB) position.PositionRepository {
	return &positionRepositoryImpl{db: db}
}

const positionColumns = `
	p.id, p.name, p.department_id, p.level, p.is_active, p.created_at, p.updated_at`

func scanPosition(row pgx.Row, withJoins bool) (position.Position, error) {
	var pos position.Position

	dest := []interface{}{
		&pos.ID, &pos.Name, &pos.DepartmentID, &pos.Level, &pos.IsActive,
		&pos.CreatedAt, &pos.UpdatedAt,
	}
	if withJoins {
		dest = append(dest, &pos.DepartmentName)
	}

	if err := row.Scan(dest...); err != nil {
		return position.Position{}, err
	}
	return pos, nil
}

func (r *positionRepositoryImpl) Create(ctx context.Context, p *position.Position) (*position.Position, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO positions (id, name, department_id, level, is_active, created_at, updated_at)
		VALUES (uuidv7(), $1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, p.Name, p.DepartmentID, p.Level, p.IsActive).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_position_name") {
			return nil, position.ErrPositionNameExists
		}
		return nil, fmt.Errorf("failed to insert position: %w", err)
	}

	return p, nil
}

func (r *positionRepositoryImpl) GetByID(ctx context.Context, id string) (*position.Position, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + positionColumns + `,
			   d.name AS department_name
		FROM positions p
		LEFT JOIN departments d ON p.department_id = d.id
		WHERE p.id = $1
	`

	pos, err := scanPosition(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, position.ErrPositionNotFound
		}
		return nil, fmt.Errorf("failed to get position: %w", err)
	}

	return &pos, nil
}

func (r *positionRepositoryImpl) List(ctx context.Context, departmentID string, activeOnly bool) ([]position.Position, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if departmentID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("p.department_id = $%d", argIdx))
		args = append(args, departmentID)
		argIdx++
	}
	if activeOnly {
		whereClauses = append(whereClauses, "p.is_active = TRUE")
	}

	query := fmt.Sprintf(`
		SELECT `+positionColumns+`,
			   d.name AS department_name
		FROM positions p
		LEFT JOIN departments d ON p.department_id = d.id
		WHERE %s
		ORDER BY p.level DESC, p.name
	`, strings.Join(whereClauses, " AND "))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []position.Position
	for rows.Next() {
		pos, err := scanPosition(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, pos)
	}

	return positions, rows.Err()
}

func (r *positionRepositoryImpl) Update(ctx context.Context, p *position.Position) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE positions
		SET name = $1, department_id = $2, level = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query, p.Name, p.DepartmentID, p.Level, p.ID).Scan(&p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return position.ErrPositionNotFound
		}
		if strings.Contains(err.Error(), "uk_position_name") {
			return position.ErrPositionNameExists
		}
		return fmt.Errorf("failed to update position: %w", err)
	}

	return nil
}

func (r *positionRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE positions SET is_active = $1, updated_at = NOW() WHERE id = $2
	`, active, id)
	if err != nil {
		return fmt.Errorf("failed to set position active flag: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return position.ErrPositionNotFound
	}
	return nil
}

func (r *positionRepositoryImpl) InUse(ctx context.Context, id string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var inUse bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM employees WHERE position_id = $1)
	`, id).Scan(&inUse)
	return inUse, err
}
