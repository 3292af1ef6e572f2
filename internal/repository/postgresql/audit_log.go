package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/audit"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
)

type auditLogRepositoryImpl struct {
	db *database.DB
}

func NewAuditLogRepository(db *database.DB) audit.Repository {
	return &auditLogRepositoryImpl{db: db}
}

func (r *auditLogRepositoryImpl) Create(ctx context.Context, e *audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	oldJSON, _ := json.Marshal(e.OldValues)
	newJSON, _ := json.Marshal(e.NewValues)

	query := `
		INSERT INTO audit_logs (
			id, actor_id, action, entity_type, entity_id,
			old_values, new_values, request_id, ip_address, created_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, NOW()
		) RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		e.ActorID, e.Action, e.EntityType, e.EntityID,
		oldJSON, newJSON, e.RequestID, e.IPAddress,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	return nil
}

func (r *auditLogRepositoryImpl) List(ctx context.Context, filter audit.Filter) ([]audit.Entry, int, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.ActorID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("al.actor_id = $%d", argIdx))
		args = append(args, filter.ActorID)
		argIdx++
	}
	if filter.EntityType != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("al.entity_type = $%d", argIdx))
		args = append(args, filter.EntityType)
		argIdx++
	}
	if filter.EntityID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("al.entity_id = $%d", argIdx))
		args = append(args, filter.EntityID)
		argIdx++
	}
	if filter.Action != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("al.action = $%d", argIdx))
		args = append(args, filter.Action)
		argIdx++
	}
	if filter.From != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("al.created_at >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("al.created_at <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM audit_logs al WHERE %s`, whereClause)
	var total int
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT al.id, al.actor_id, al.action, al.entity_type, al.entity_id,
			   al.old_values, al.new_values, al.request_id, al.ip_address, al.created_at
		FROM audit_logs al
		WHERE %s
		ORDER BY al.created_at DESC, al.id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		var oldBytes, newBytes []byte
		err := rows.Scan(
			&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID,
			&oldBytes, &newBytes, &e.RequestID, &e.IPAddress, &e.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		_ = json.Unmarshal(oldBytes, &e.OldValues)
		_ = json.Unmarshal(newBytes, &e.NewValues)
		entries = append(entries, e)
	}

	return entries, total, rows.Err()
}
