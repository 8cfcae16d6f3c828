package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/timmy/promptgen/internal/apperr"
	"github.com/timmy/promptgen/internal/domain"
)

// PostStore persists posts.
type PostStore interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Post], error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id string) error
}

// PostInput is the editable part of a post.
type PostInput struct {
	Title   string
	Content string
}

// Validate checks the post fields and reports every failing field.
func (in PostInput) Validate() error {
	fields := map[string][]string{}

	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		fields["title"] = []string{"The title is mandatory."}
	case utf8.RuneCountInString(title) < 2:
		fields["title"] = []string{"The title must be at least 2 characters long."}
	}
	if strings.TrimSpace(in.Content) == "" {
		fields["content"] = []string{"The content is mandatory."}
	}

	if len(fields) == 0 {
		return nil
	}
	summary := firstMessage(fields, "title", "content")
	if len(fields) > 1 {
		summary += " (and 1 more error)"
	}
	return apperr.ValidationFields(fields, summary)
}

func firstMessage(fields map[string][]string, order ...string) string {
	for _, key := range order {
		if msgs := fields[key]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	return "The given data was invalid."
}

// PostService manages posts. Only the author may change or remove a post.
type PostService struct {
	posts PostStore
}

// NewPostService creates a new post service.
func NewPostService(posts PostStore) *PostService {
	return &PostService{posts: posts}
}

// List returns one page of posts.
func (s *PostService) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Post], error) {
	return s.posts.List(ctx, page)
}

// Get returns a post by ID.
func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// Create adds a post authored by userID.
func (s *PostService) Create(ctx context.Context, userID string, in PostInput) (*domain.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	post := &domain.Post{
		UserID:  userID,
		Title:   strings.TrimSpace(in.Title),
		Content: in.Content,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, post.ID)
}

// Update replaces the title and content of a post owned by userID.
func (s *PostService) Update(ctx context.Context, userID, id string, in PostInput) (*domain.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	post, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	post.Title = strings.TrimSpace(in.Title)
	post.Content = in.Content
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, id)
}

// Delete removes a post owned by userID.
func (s *PostService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.posts.Delete(ctx, id)
}

func (s *PostService) owned(ctx context.Context, userID, id string) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, apperr.Forbidden("This action is unauthorized.")
	}
	return post, nil
}
