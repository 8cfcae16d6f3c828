package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/timmy/promptgen/internal/apperr"
	"github.com/timmy/promptgen/internal/domain"
	"github.com/timmy/promptgen/internal/repository"
	"github.com/timmy/promptgen/internal/testutils"
)

func TestPostRepository_CRUD(t *testing.T) {
	db := testutils.SetupDB(t)
	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	ctx := context.Background()

	author := &domain.User{Name: "Ann", Email: "Ann@Example.com", PasswordHash: "x"}
	if err := users.Create(ctx, author); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"one", "two", "three"} {
		p := &domain.Post{UserID: author.ID, Title: title, Content: "c", CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := posts.Create(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	page, err := posts.List(ctx, domain.PageRequest{Number: 2, Size: 2})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || len(page.Items) != 1 || page.Items[0].Title != "three" {
		t.Fatalf("page 2 = %+v", page)
	}
	if page.Items[0].User == nil || page.Items[0].User.Email != "ann@example.com" {
		t.Errorf("author not preloaded: %+v", page.Items[0].User)
	}

	got, err := posts.GetByID(ctx, page.Items[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	got.Title = "updated"
	if err := posts.Update(ctx, got); err != nil {
		t.Fatal(err)
	}
	again, _ := posts.GetByID(ctx, got.ID)
	if again.Title != "updated" {
		t.Errorf("Title = %q after update", again.Title)
	}

	if err := posts.Delete(ctx, got.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := posts.GetByID(ctx, got.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("GetByID after delete error = %v", err)
	}
	if err := posts.Delete(ctx, got.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("second Delete error = %v", err)
	}
}

func TestUserRepository_DuplicateEmailIsConflict(t *testing.T) {
	users := repository.NewUserRepository(testutils.SetupDB(t))
	ctx := context.Background()

	if err := users.Create(ctx, &domain.User{Name: "A", Email: "a@example.com", PasswordHash: "x"}); err != nil {
		t.Fatal(err)
	}
	err := users.Create(ctx, &domain.User{Name: "B", Email: " A@example.com ", PasswordHash: "y"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("error = %v, want conflict", err)
	}

	u, err := users.GetByEmail(ctx, "A@EXAMPLE.COM")
	if err != nil || u.Name != "A" {
		t.Fatalf("GetByEmail() = %+v, %v", u, err)
	}
	if _, err := users.GetByID(ctx, "missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("GetByID(missing) error = %v", err)
	}
}
