package seed

import (
	"testing"

	"microblog/internal/database"
	"microblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestSeed(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	require.NoError(t, Seed(db, Options{NumUsers: 5, NumPosts: 20, ShouldClean: false}))

	var userCount, postCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	assert.EqualValues(t, 5, userCount)
	assert.EqualValues(t, 20, postCount)

	// Every account uses the shared development password.
	var user models.User
	require.NoError(t, db.First(&user).Error)
	assert.True(t, user.CheckPassword(Password))

	// No self-follows.
	var selfFollows int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("follower_id = followed_id").Count(&selfFollows).Error)
	assert.EqualValues(t, 0, selfFollows)
}

func TestSeedCleanRemovesExistingData(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	stale := &models.User{Username: "stale", Email: "stale@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(stale).Error)

	require.NoError(t, Seed(db, Options{NumUsers: 3, NumPosts: 5, ShouldClean: true}))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "stale").Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
