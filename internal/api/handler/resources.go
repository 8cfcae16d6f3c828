package handler

import (
	"time"

	"github.com/timmy/promptgen/internal/domain"
)

// GenerationResource is the public shape of a generation record.
type GenerationResource struct {
	ID               string    `json:"id"`
	StoragePath      string    `json:"storage_path"`
	ImageURL         string    `json:"image_url"`
	GeneratedText    string    `json:"generated_text"`
	FileSize         int64     `json:"file_size"`
	OriginalFilename string    `json:"original_filename"`
	MimeType         string    `json:"mime_type"`
	CreatedAt        time.Time `json:"created_at"`
}

func newGenerationResource(rec domain.GenerationRecord, imageURL string) GenerationResource {
	return GenerationResource{
		ID:               rec.ID,
		StoragePath:      rec.StoragePath,
		ImageURL:         imageURL,
		GeneratedText:    rec.GeneratedText,
		FileSize:         rec.FileSize,
		OriginalFilename: rec.OriginalFilename,
		MimeType:         rec.MimeType,
		CreatedAt:        rec.CreatedAt,
	}
}

// UserResource is the public shape of a user.
type UserResource struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResource(u *domain.User, withEmail bool) *UserResource {
	if u == nil {
		return nil
	}
	r := &UserResource{ID: u.ID, Name: u.Name, CreatedAt: u.CreatedAt}
	if withEmail {
		r.Email = u.Email
	}
	return r
}

// PostResource is the public shape of a post.
type PostResource struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Author    *UserResource `json:"author,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func newPostResource(p domain.Post) PostResource {
	return PostResource{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Author:    newUserResource(p.User, false),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
