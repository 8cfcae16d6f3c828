package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/timmy/promptgen/internal/apperr"
	"github.com/timmy/promptgen/internal/repository"
	"github.com/timmy/promptgen/internal/testutils"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()
	users := repository.NewUserRepository(testutils.SetupDB(t))
	svc := NewAuthService(users, &AuthConfig{Secret: "test-secret", TokenTTL: time.Hour})
	svc.bcryptCost = bcrypt.MinCost
	return svc
}

func TestAuth_RegisterLoginAndParse(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.PasswordHash == "correct horse" {
		t.Fatal("password stored in clear text")
	}

	id, err := svc.ParseToken(token)
	if err != nil || id != user.ID {
		t.Fatalf("ParseToken() = %q, %v; want %q", id, err, user.ID)
	}

	_, loginToken, err := svc.Login(ctx, "ANN@example.com", "correct horse")
	if err != nil || loginToken == "" {
		t.Fatalf("Login() error = %v", err)
	}

	if _, _, err := svc.Login(ctx, "ann@example.com", "wrong"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("wrong password error = %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "x"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("unknown user error = %v", err)
	}

	me, err := svc.CurrentUser(ctx, id)
	if err != nil || me.Email != "ann@example.com" {
		t.Errorf("CurrentUser() = %+v, %v", me, err)
	}
}

func TestAuth_RegisterValidation(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "short"}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("short password error = %v", err)
	}

	if _, _, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "long enough"}); err != nil {
		t.Fatal(err)
	}
	_, _, err := svc.Register(ctx, RegisterInput{Name: "B", Email: "a@example.com", Password: "long enough"})
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind != apperr.KindValidation || len(appErr.Fields["email"]) != 1 {
		t.Errorf("duplicate email error = %v", err)
	}
}

func TestAuth_ParseTokenRejects(t *testing.T) {
	svc := newTestAuth(t)

	expired := NewAuthService(nil, &AuthConfig{Secret: "test-secret", TokenTTL: time.Minute})
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expiredToken, _ := expired.IssueToken("u1")

	otherSecret, _ := NewAuthService(nil, &AuthConfig{Secret: "other"}).IssueToken("u1")

	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Type:             tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "promptgen"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"expired":      expiredToken,
		"wrong secret": otherSecret,
		"alg none":     noneToken,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.ParseToken(token); !apperr.Is(err, apperr.KindUnauthorized) {
				t.Errorf("ParseToken() error = %v, want unauthorized", err)
			}
		})
	}
}
