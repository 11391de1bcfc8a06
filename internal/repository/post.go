package repository

import (
	"context"

	"microblog/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// Feed returns one page of posts authored by the given user or by users
	// they follow, newest first.
	Feed(ctx context.Context, userID uint, page, size int) (*Page, error)
	// All returns one page of every post system-wide, newest first.
	All(ctx context.Context, page, size int) (*Page, error)
	// ByAuthor returns one page of posts written by the given user, newest first.
	ByAuthor(ctx context.Context, userID uint, page, size int) (*Page, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) Feed(ctx context.Context, userID uint, page, size int) (*Page, error) {
	followed := r.db.Model(&models.Follow{}).
		Select("followed_id").
		Where("follower_id = ?", userID)

	query := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("user_id IN (?) OR user_id = ?", followed, userID)

	return r.paginate(query, page, size)
}

func (r *postRepository) All(ctx context.Context, page, size int) (*Page, error) {
	return r.paginate(r.db.WithContext(ctx).Model(&models.Post{}), page, size)
}

func (r *postRepository) ByAuthor(ctx context.Context, userID uint, page, size int) (*Page, error) {
	query := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("user_id = ?", userID)
	return r.paginate(query, page, size)
}

// paginate counts the full result set, then fetches the requested page with
// authors preloaded, newest first.
func (r *postRepository) paginate(query *gorm.DB, page, size int) (*Page, error) {
	page, size = clampPage(page, size)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var posts []*models.Post
	if err := query.Session(&gorm.Session{}).
		Preload("User").
		Order("created_at DESC, id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return &Page{Posts: posts, Number: page, Size: size, Total: total}, nil
}
