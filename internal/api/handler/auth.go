package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/promptgen/internal/api/middleware"
	"github.com/timmy/promptgen/internal/domain"
	"github.com/timmy/promptgen/internal/service"
)

// AuthHandler handles account endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err), "Registration failed")
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err, "Registration failed")
		return
	}

	c.JSON(http.StatusCreated, tokenResponse(user, token))
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err), "Login failed")
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}

	c.JSON(http.StatusOK, tokenResponse(user, token))
}

// Me handles GET /api/v1/user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err, "Failed to load user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newUserResource(user, true)})
}

func tokenResponse(user *domain.User, token string) gin.H {
	return gin.H{
		"data":         newUserResource(user, true),
		"access_token": token,
		"token_type":   "Bearer",
	}
}
