package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskmanager/internal/auth"
	"github.com/yukikurage/taskmanager/internal/constants"
	apierrors "github.com/yukikurage/taskmanager/internal/errors"
)

// RequireAuth checks for a valid bearer token
func RequireAuth(tokens *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apierrors.Unauthorized(c, "", "Authorization header is required")
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, constants.TokenType) || token == "" {
			apierrors.Unauthorized(c, "", "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				apierrors.Unauthorized(c, apierrors.ErrCodeTokenExpired, "Token has expired")
				return
			}
			apierrors.Unauthorized(c, "", "Invalid token")
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case int64:
		return v, v > 0
	case int:
		return int64(v), v > 0
	default:
		return 0, false
	}
}
