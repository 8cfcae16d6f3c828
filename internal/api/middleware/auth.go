package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/promptgen/internal/logger"
)

// ContextUserID is the gin context key holding the authenticated user ID.
const ContextUserID = "user_id"

// TokenParser validates a bearer token and returns the user ID it names.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// JWTAuth rejects requests without a valid "Authorization: Bearer <token>".
func JWTAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}

		userID, err := parser.ParseToken(strings.TrimSpace(token))
		if err != nil {
			GetLogger(c).WithError(err).Debug("Rejected bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}

		c.Set(ContextUserID, userID)
		c.Request = c.Request.WithContext(logger.SetUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// UserID returns the authenticated user ID, or "" outside JWTAuth.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
