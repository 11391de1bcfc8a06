package repository

import (
	"context"
	"fmt"
	"testing"

	"microblog/internal/database"
	"microblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestFollowRepository_FollowIsIdempotent(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	john := createTestUser(t, db, "john")
	susan := createTestUser(t, db, "susan")

	require.NoError(t, repo.Follow(ctx, john.ID, susan.ID))
	require.NoError(t, repo.Follow(ctx, john.ID, susan.ID))

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	following, err := repo.IsFollowing(ctx, john.ID, susan.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// Direction matters: susan does not follow john.
	following, err = repo.IsFollowing(ctx, susan.ID, john.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollowRepository_UnfollowMissingEdgeIsNoOp(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	john := createTestUser(t, db, "john")
	susan := createTestUser(t, db, "susan")

	assert.NoError(t, repo.Unfollow(ctx, john.ID, susan.ID))

	require.NoError(t, repo.Follow(ctx, john.ID, susan.ID))
	require.NoError(t, repo.Unfollow(ctx, john.ID, susan.ID))
	require.NoError(t, repo.Unfollow(ctx, john.ID, susan.ID))

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestFollowRepository_SelfFollowRejected(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	john := createTestUser(t, db, "john")

	assert.Error(t, repo.Follow(ctx, john.ID, john.ID))
	assert.Error(t, repo.Unfollow(ctx, john.ID, john.ID))

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestFollowRepository_Counts(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	john := createTestUser(t, db, "john")
	susan := createTestUser(t, db, "susan")
	mary := createTestUser(t, db, "mary")

	require.NoError(t, repo.Follow(ctx, john.ID, susan.ID))
	require.NoError(t, repo.Follow(ctx, mary.ID, susan.ID))
	require.NoError(t, repo.Follow(ctx, susan.ID, john.ID))

	followers, err := repo.CountFollowers(ctx, susan.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, followers)

	following, err := repo.CountFollowing(ctx, susan.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, following)
}
