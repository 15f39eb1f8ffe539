package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/auth"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/response"
)

const (
	AuthContextKey = "user_id"

	// Cookie names shared with the user handlers
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// TokenParser verifies access tokens
type TokenParser interface {
	ParseAccess(token string) (*auth.Claims, error)
}

// accessToken reads the access token from the cookie, falling back to the
// Authorization header
func accessToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}

	// Extract token from "Bearer <token>"
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func setViewer(c *gin.Context, userID string) {
	c.Set(AuthContextKey, userID)
	ctx := c.Request.Context()
	c.Request = c.Request.WithContext(logging.FromContext(ctx).WithUserID(userID).WithContext(ctx))
}

// JWTAuth middleware rejects requests without a valid access token
func JWTAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			response.Fail(c, apperror.Unauthorized("Unauthorized request"))
			return
		}

		claims, err := tokens.ParseAccess(token)
		if err != nil {
			response.Fail(c, apperror.Unauthorized("Invalid or expired access token"))
			return
		}

		setViewer(c, claims.UserID)
		c.Next()
	}
}

// OptionalAuth middleware identifies the viewer when a valid access token is
// present and lets anonymous requests through otherwise
func OptionalAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := accessToken(c); token != "" {
			if claims, err := tokens.ParseAccess(token); err == nil {
				setViewer(c, claims.UserID)
			}
		}
		c.Next()
	}
}

// GetUserID retrieves the user ID from the context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(AuthContextKey)
	if !exists {
		return "", false
	}

	userIDStr, ok := userID.(string)
	return userIDStr, ok && userIDStr != ""
}

// ViewerID returns the authenticated user ID, or "" for anonymous requests
func ViewerID(c *gin.Context) string {
	userID, _ := GetUserID(c)
	return userID
}
