package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
)

type identityRepositoryImpl struct {
	db *database.DB
}

func NewIdentityRepository(db *database.DB) user.IdentityRepository {
	return &identityRepositoryImpl{db: db}
}

func (r *identityRepositoryImpl) Create(ctx context.Context, identity user.Identity) (user.Identity, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO identities (id, user_id, provider, provider_user_id, email, created_at)
		VALUES (uuidv7(), $1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		identity.UserID, identity.Provider, identity.ProviderUserID, identity.Email,
	).Scan(&identity.ID, &identity.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_identity_provider") {
			return user.Identity{}, user.ErrIdentityExists
		}
		return user.Identity{}, fmt.Errorf("failed to insert identity: %w", err)
	}

	return identity, nil
}

func (r *identityRepositoryImpl) GetByProvider(ctx context.Context, provider string, providerUserID string) (user.Identity, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, provider, provider_user_id, email, created_at
		FROM identities
		WHERE provider = $1 AND provider_user_id = $2
	`

	var identity user.Identity
	err := q.QueryRow(ctx, query, provider, providerUserID).Scan(
		&identity.ID, &identity.UserID, &identity.Provider, &identity.ProviderUserID,
		&identity.Email, &identity.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return user.Identity{}, user.ErrUserNotFound
		}
		return user.Identity{}, fmt.Errorf("failed to get identity: %w", err)
	}

	return identity, nil
}

func (r *identityRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]user.Identity, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, provider, provider_user_id, email, created_at
		FROM identities
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query identities: %w", err)
	}
	defer rows.Close()

	var identities []user.Identity
	for rows.Next() {
		var identity user.Identity
		err := rows.Scan(
			&identity.ID, &identity.UserID, &identity.Provider, &identity.ProviderUserID,
			&identity.Email, &identity.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		identities = append(identities, identity)
	}

	return identities, rows.Err()
}
