package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Seifallahbhj/beyana-Naturellement-Bio/config"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/models"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/utils"
)

const currentUserKey = "current_user"

// Authenticate verifies the access token from the Authorization header or
// the token cookie, re-fetches the user, and rejects tokens issued before
// the user's last password change.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, appErr := resolveUser(c)
		if appErr != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    appErr.code,
					"message": appErr.message,
				},
			})
			c.Abort()
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// OptionalAuthenticate resolves the current user when a valid token is
// present but never rejects the request. Used on public routes whose
// responses vary for admins or resource owners.
func OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, appErr := resolveUser(c); appErr == nil {
			c.Set(currentUserKey, user)
		}
		c.Next()
	}
}

type authFailure struct {
	code    string
	message string
}

func resolveUser(c *gin.Context) (*models.User, *authFailure) {
	tokenString := extractToken(c)
	if tokenString == "" {
		return nil, &authFailure{"UNAUTHENTICATED", "You are not logged in. Please log in to access this resource"}
	}

	cfg := config.GetConfig()
	claims, err := utils.ParseToken(tokenString, cfg.JWTSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &authFailure{"TOKEN_EXPIRED", "Your session has expired. Please log in again"}
		}
		return nil, &authFailure{"INVALID_TOKEN", "Invalid token. Please log in again"}
	}

	userID, err := utils.TokenSubjectID(claims)
	if err != nil {
		return nil, &authFailure{"INVALID_TOKEN", "Invalid token. Please log in again"}
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, &authFailure{"UNAUTHENTICATED", "The user associated with this token no longer exists"}
	}

	if claims.IssuedAt != nil && user.PasswordChangedAfter(claims.IssuedAt.Time) {
		return nil, &authFailure{"UNAUTHENTICATED", "Your password was changed recently. Please log in again"}
	}

	return &user, nil
}

// extractToken reads the bearer token from the Authorization header, falling
// back to the token cookie.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}

	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

// CurrentUser extracts the authenticated user from the Gin context
func CurrentUser(c *gin.Context) (*models.User, error) {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_USER", Message: "User not found in context"}
	}

	user, ok := value.(*models.User)
	if !ok {
		return nil, &AuthError{Code: "INVALID_USER", Message: "User in context has unexpected type"}
	}

	return user, nil
}

// SetCurrentUser stores the authenticated user in the Gin context the same
// way Authenticate does (primarily for testing).
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(currentUserKey, user)
}

// RequireRoles rejects the request unless the authenticated user's role is
// in the permitted set. Must run after Authenticate.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		user, err := CurrentUser(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHENTICATED",
					"message": "You are not logged in. Please log in to access this resource",
				},
			})
			c.Abort()
			return
		}

		if !allowed[user.Role] {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "You do not have permission to perform this action",
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
