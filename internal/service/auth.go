package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/timmy/promptgen/internal/apperr"
	"github.com/timmy/promptgen/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const tokenTypeAccess = "access"

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AuthConfig holds token settings.
type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
	Issuer   string
}

// Claims are the JWT claims of an access token. Subject is the user ID.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// AuthService registers users and issues HS256 bearer tokens.
type AuthService struct {
	users      UserStore
	secret     []byte
	ttl        time.Duration
	issuer     string
	bcryptCost int
	now        func() time.Time
}

// NewAuthService creates a new auth service.
func NewAuthService(users UserStore, cfg *AuthConfig) *AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "promptgen"
	}
	return &AuthService{
		users:      users,
		secret:     []byte(cfg.Secret),
		ttl:        ttl,
		issuer:     issuer,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// RegisterInput is a new account request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates an account and returns it with an access token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	if len(in.Password) < 8 {
		return nil, "", apperr.Validation("password", "The password must be at least 8 characters.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, "", apperr.Internal("failed to hash password", err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, "", apperr.Validation("email", "The email has already been taken.")
		}
		return nil, "", err
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns the user with an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, "", apperr.Unauthorized("Invalid credentials.")
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperr.Unauthorized("Invalid credentials.")
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken signs an access token for userID.
func (s *AuthService) IssueToken(userID string) (string, error) {
	now := s.now()
	claims := Claims{
		Type: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperr.Internal("failed to sign token", err)
	}
	return signed, nil
}

// ParseToken validates an access token and returns the user ID it names.
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnauthorized, "Unauthenticated.", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", apperr.Unauthorized("Unauthenticated.")
	}
	if claims.Type != tokenTypeAccess || claims.Subject == "" {
		return "", apperr.Wrap(apperr.KindUnauthorized, "Unauthenticated.", errors.New("invalid token type"))
	}
	return claims.Subject, nil
}

// CurrentUser loads the account behind an authenticated request.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("Unauthenticated.")
		}
		return nil, err
	}
	return user, nil
}
