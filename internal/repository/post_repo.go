package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/timmy/promptgen/internal/apperr"
	"github.com/timmy/promptgen/internal/domain"
	"gorm.io/gorm"
)

// PostRepository handles post data operations.
type PostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository.
// Parameters:
//   - db: GORM database handle used for queries.
//
// Returns:
//   - *PostRepository: repository instance bound to db.
func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a new post.
func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Omit("User").Create(post).Error; err != nil {
		return apperr.Persistence("failed to create post", err)
	}
	return nil
}

// GetByID retrieves a post with its author.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&post, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, "Post not found")
	}
	return &post, nil
}

// List returns one page of posts with their authors, oldest first.
func (r *PostRepository) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Post], error) {
	result := domain.Page[domain.Post]{Number: page.Number, Size: page.Size}

	if err := r.db.WithContext(ctx).Model(&domain.Post{}).Count(&result.Total).Error; err != nil {
		return result, apperr.Persistence("failed to count posts", err)
	}

	result.Items = []domain.Post{}
	if result.Total == 0 {
		return result, nil
	}

	if err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at ASC").
		Order("id ASC").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&result.Items).Error; err != nil {
		return result, apperr.Persistence("failed to list posts", err)
	}
	return result, nil
}

// Update saves the title and content of an existing post.
func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	err := r.db.WithContext(ctx).
		Model(post).
		Updates(map[string]interface{}{
			"title":   post.Title,
			"content": post.Content,
		}).Error
	if err != nil {
		return apperr.Persistence("failed to update post", err)
	}
	return nil
}

// Delete removes a post by ID.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.Post{}, "id = ?", id)
	if result.Error != nil {
		return apperr.Persistence("failed to delete post", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Post not found")
	}
	return nil
}
