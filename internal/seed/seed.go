// Package seed populates the database with fake users, posts and follower
// relationships for development.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"microblog/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Password is the shared password of every seeded account, so any of them
// can be used to log in during development.
const Password = "password123"

// Seed populates the database with test data.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clearing existing data: %w", err)
		}
	}

	users, err := seedUsers(db, opts.NumUsers)
	if err != nil {
		return err
	}
	if err := seedPosts(db, users, opts.NumPosts); err != nil {
		return err
	}
	if err := seedFollows(db, users); err != nil {
		return err
	}

	log.Println("✅ Seeding complete")
	return nil
}

func clearData(db *gorm.DB) error {
	for _, model := range []any{&models.Follow{}, &models.Post{}, &models.User{}} {
		if err := db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedUsers(db *gorm.DB, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	seen := map[string]bool{}

	for len(users) < count {
		username := strings.ToLower(gofakeit.Username())
		if len(username) < 3 || len(username) > 30 || seen[username] {
			continue
		}
		seen[username] = true

		user := &models.User{
			Username: username,
			Email:    fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			AboutMe:  truncate(gofakeit.Quote(), 140),
			LastSeen: gofakeit.DateRange(time.Now().AddDate(0, -1, 0), time.Now()),
		}
		if err := user.SetPassword(Password); err != nil {
			return nil, err
		}
		if err := db.Create(user).Error; err != nil {
			return nil, fmt.Errorf("creating user %s: %w", username, err)
		}
		users = append(users, user)
	}

	log.Printf("   created %d users (password %q)", len(users), Password)
	return users, nil
}

func seedPosts(db *gorm.DB, users []*models.User, count int) error {
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		post := &models.Post{
			Body:      truncate(gofakeit.HipsterSentence(gofakeit.Number(3, 12)), 140),
			UserID:    author.ID,
			CreatedAt: gofakeit.DateRange(time.Now().AddDate(0, -1, 0), time.Now()),
		}
		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("creating post: %w", err)
		}
	}

	log.Printf("   created %d posts", count)
	return nil
}

// seedFollows gives every user a handful of random follows. Duplicate picks
// hit the unique pair index and are skipped.
func seedFollows(db *gorm.DB, users []*models.User) error {
	created := 0
	for _, follower := range users {
		for n := gofakeit.Number(0, 5); n > 0; n-- {
			followed := users[rand.Intn(len(users))]
			if followed.ID == follower.ID {
				continue
			}
			follow := &models.Follow{FollowerID: follower.ID, FollowedID: followed.ID}
			result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(follow)
			if result.Error != nil {
				return fmt.Errorf("creating follow: %w", result.Error)
			}
			created += int(result.RowsAffected)
		}
	}

	log.Printf("   created %d follows", created)
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max])
}
