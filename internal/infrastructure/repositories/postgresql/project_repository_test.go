package postgresql

import (
	"context"
	"testing"

	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/docsmait/docsmait/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepository_CreateMakesCreatorOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	projects := NewProjectRepository(db)
	ctx := context.Background()

	creator := testutil.CreateTestUser(t, db)
	project := &models.Project{
		ID:        uuid.New(),
		Name:      "Device X510",
		IsActive:  true,
		CreatedBy: creator.ID,
	}
	require.NoError(t, projects.Create(ctx, project))

	isMember, err := projects.IsMember(ctx, project.ID, creator.ID)
	require.NoError(t, err)
	assert.True(t, isMember)
}

func TestProjectRepository_ListForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	projects := NewProjectRepository(db)
	ctx := context.Background()

	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)

	mine := testutil.CreateTestProject(t, db, alice)
	testutil.CreateTestProject(t, db, bob)

	got, err := projects.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)
}

func TestProjectRepository_Membership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	projects := NewProjectRepository(db)
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, db)
	reviewer := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, owner)

	isMember, err := projects.IsMember(ctx, project.ID, reviewer.ID)
	require.NoError(t, err)
	assert.False(t, isMember)

	member := &models.ProjectMember{
		ID:        uuid.New(),
		ProjectID: project.ID,
		UserID:    reviewer.ID,
	}
	require.NoError(t, projects.AddMember(ctx, member))

	isMember, err = projects.IsMember(ctx, project.ID, reviewer.ID)
	require.NoError(t, err)
	assert.True(t, isMember)

	require.NoError(t, projects.RemoveMember(ctx, project.ID, reviewer.ID))

	isMember, err = projects.IsMember(ctx, project.ID, reviewer.ID)
	require.NoError(t, err)
	assert.False(t, isMember)
}
