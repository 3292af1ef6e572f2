package postgresql_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelola-hr/hrm-backend-go/internal/domain/user"
	"github.com/kelola-hr/hrm-backend-go/internal/repository/postgresql"
)

func TestUserRepositoryCreateAndGet(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	repo := postgresql.NewUserRepository(testDB)
	ctx := context.Background()

	created := createTestUser(t, "ana@example.com", user.RoleAdmin)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", byID.Email)
	assert.Equal(t, user.RoleAdmin, byID.Role)
	assert.True(t, byID.IsActive)

	// Email lookup is case-insensitive.
	byEmail, err := repo.GetByEmail(ctx, "ANA@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	repo := postgresql.NewUserRepository(testDB)
	created := createTestUser(t, "dup@example.com", user.RoleEmployee)

	_, err := repo.Create(context.Background(), user.User{
		Email:        "dup@example.com",
		PasswordHash: created.PasswordHash,
		Role:         user.RoleEmployee,
		IsActive:     true,
	})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)
}

func TestUserRepositoryNotFound(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	repo := postgresql.NewUserRepository(testDB)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "019236a0-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = repo.GetByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = repo.GetByEmployeeID(ctx, "019236a0-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepositoryCountAll(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	repo := postgresql.NewUserRepository(testDB)
	ctx := context.Background()

	total, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	createTestUser(t, "one@example.com", user.RoleAdmin)
	createTestUser(t, "two@example.com", user.RoleEmployee)

	total, err = repo.CountAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestUserRepositoryUpdate(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	repo := postgresql.NewUserRepository(testDB)
	ctx := context.Background()
	created := createTestUser(t, "promote@example.com", user.RoleEmployee)

	role := string(user.RoleManager)
	inactive := false
	require.NoError(t, repo.Update(ctx, user.UpdateUserRequest{
		ID:       created.ID,
		Role:     &role,
		IsActive: &inactive,
	}))

	updated, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleManager, updated.Role)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "promote@example.com", updated.Email)
}

func TestUserRepositoryUpdatePassword(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	repo := postgresql.NewUserRepository(testDB)
	ctx := context.Background()
	created := createTestUser(t, "rehash@example.com", user.RoleEmployee)

	require.NoError(t, repo.UpdatePassword(ctx, created.ID, "new-hash"))

	updated, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.PasswordHash)
	assert.Equal(t, "new-hash", *updated.PasswordHash)

	err = repo.UpdatePassword(ctx, "019236a0-0000-7000-8000-000000000000", "x")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepositoryFirstActiveByRole(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	repo := postgresql.NewUserRepository(testDB)
	ctx := context.Background()

	first := createTestUser(t, "hr-first@example.com", user.RoleHRManager)
	createTestUser(t, "hr-second@example.com", user.RoleHRManager)

	got, err := repo.FirstActiveByRole(ctx, user.RoleHRManager)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	// Deactivating the first promotes the second.
	inactive := false
	require.NoError(t, repo.Update(ctx, user.UpdateUserRequest{ID: first.ID, IsActive: &inactive}))

	got, err = repo.FirstActiveByRole(ctx, user.RoleHRManager)
	require.NoError(t, err)
	assert.Equal(t, "hr-second@example.com", got.Email)

	_, err = repo.FirstActiveByRole(ctx, user.RoleFinanceManager)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepositoryList(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	repo := postgresql.NewUserRepository(testDB)
	ctx := context.Background()

	createTestUser(t, "list-admin@example.com", user.RoleAdmin)
	createTestUser(t, "list-emp-a@example.com", user.RoleEmployee)
	createTestUser(t, "list-emp-b@example.com", user.RoleEmployee)

	employees, total, err := repo.List(ctx, user.ListFilter{Role: string(user.RoleEmployee), Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, employees, 2)

	paged, total, err := repo.List(ctx, user.ListFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, paged, 2)
}
