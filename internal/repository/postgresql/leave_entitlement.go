package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/leave"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
)

type leaveEntitlementRepositoryImpl struct {
	db *database.DB
}

func NewLeaveEntitlementRepository(db *database.DB) leave.EntitlementRepository {
	return &leaveEntitlementRepositoryImpl{db: db}
}

func (r *leaveEntitlementRepositoryImpl) List(ctx context.Context) ([]leave.Entitlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, leave_type, annual_days, requires_balance, created_at, updated_at
		FROM leave_entitlements
		ORDER BY leave_type
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave entitlements: %w", err)
	}
	defer rows.Close()

	var entitlements []leave.Entitlement
	for rows.Next() {
		var e leave.Entitlement
		if err := rows.Scan(&e.ID, &e.LeaveType, &e.AnnualDays, &e.RequiresBalance, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leave entitlement: %w", err)
		}
		entitlements = append(entitlements, e)
	}

	return entitlements, rows.Err()
}

func (r *leaveEntitlementRepositoryImpl) GetByType(ctx context.Context, leaveType leave.Type) (leave.Entitlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, leave_type, annual_days, requires_balance, created_at, updated_at
		FROM leave_entitlements
		WHERE leave_type = $1
	`

	var e leave.Entitlement
	err := q.QueryRow(ctx, query, leaveType).Scan(
		&e.ID, &e.LeaveType, &e.AnnualDays, &e.RequiresBalance, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.Entitlement{}, leave.ErrEntitlementNotFound
		}
		return leave.Entitlement{}, err
	}

	return e, nil
}

func (r *leaveEntitlementRepositoryImpl) Upsert(ctx context.Context, entitlement leave.Entitlement) (leave.Entitlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_entitlements (id, leave_type, annual_days, requires_balance, created_at, updated_at)
		VALUES (uuidv7(), $1, $2, $3, NOW(), NOW())
		ON CONFLICT (leave_type) DO UPDATE
		SET annual_days = EXCLUDED.annual_days,
			requires_balance = EXCLUDED.requires_balance,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		entitlement.LeaveType, entitlement.AnnualDays, entitlement.RequiresBalance,
	).Scan(&entitlement.ID, &entitlement.CreatedAt, &entitlement.UpdatedAt)
	if err != nil {
		return leave.Entitlement{}, fmt.Errorf("failed to upsert leave entitlement: %w", err)
	}

	return entitlement, nil
}
