package postgresql

import (
	"context"
	"testing"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/docsmait/docsmait/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "qa.lead@example.com",
		PasswordHash: "$2a$10$hash",
		FirstName:    "Quinn",
		LastName:     "Ashford",
		Role:         models.UserRoleUser,
		IsActive:     true,
	}
	require.NoError(t, users.Create(ctx, user))

	byID, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "qa.lead@example.com", byID.Email)

	byEmail, err := users.GetByEmail(ctx, "qa.lead@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	users := NewUserRepository(db)

	_, err := users.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestUserRepository_UpdateLastLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, db)
	require.Nil(t, user.LastLoginAt)

	require.NoError(t, users.UpdateLastLogin(ctx, user.ID))

	updated, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, updated.LastLoginAt)
}

func TestUserRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		testutil.CreateTestUser(t, db)
	}

	got, total, err := users.List(ctx, repositories.ListParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, got, 2)
}
