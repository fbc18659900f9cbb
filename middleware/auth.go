package middleware

import (
	"context"
	"net/http"
	"strings"

	"hotel-pms/auth"
	"hotel-pms/models"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// UserContextKey is the key used to store the caller in the gin context.
const UserContextKey = "user"

// UserContext is the authenticated caller.
type UserContext struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Authenticator verifies HTTP Basic credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

func unauthorized(c *gin.Context, code, message string) {
	log.WithFields(log.Fields{
		"path":      c.Request.URL.Path,
		"client_ip": c.ClientIP(),
		"code":      code,
	}).Warn("auth failed")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  "error",
		"error":   "unauthorized",
		"message": message,
		"code":    code,
	})
}

// AuthMiddleware accepts a Bearer JWT or, when users is non-nil, HTTP
// Basic credentials checked against the users table.
func AuthMiddleware(tokens *auth.Service, users Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "MISSING_AUTH_HEADER", "Authorization header is required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		scheme := parts[0]
		cred := ""
		if len(parts) == 2 {
			cred = strings.TrimSpace(parts[1])
		}

		switch {
		case strings.EqualFold(scheme, "Bearer") && cred != "":
			claims, err := tokens.ValidateToken(cred)
			if err != nil {
				if auth.IsExpired(err) {
					unauthorized(c, "TOKEN_EXPIRED", "Access token has expired. Please log in again.")
				} else {
					unauthorized(c, "INVALID_TOKEN", "Invalid access token")
				}
				return
			}
			c.Set(UserContextKey, UserContext{UserID: claims.UserID, Username: claims.Username, Role: claims.Role})

		case strings.EqualFold(scheme, "Basic") && users != nil:
			username, password, ok := c.Request.BasicAuth()
			if !ok {
				unauthorized(c, "INVALID_AUTH_FORMAT", "Malformed basic credentials")
				return
			}
			user, err := users.Authenticate(c.Request.Context(), username, password)
			if err != nil {
				unauthorized(c, "INVALID_CREDENTIALS", "Invalid username or password")
				return
			}
			c.Set(UserContextKey, UserContext{UserID: user.ID, Username: user.Username, Role: user.Role})

		default:
			unauthorized(c, "INVALID_AUTH_FORMAT", "Invalid authorization header format. Expected: Bearer <token>")
			return
		}

		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUserContext(c)
		if !ok {
			unauthorized(c, "MISSING_USER_CONTEXT", "User context not found")
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"status":  "error",
			"error":   "forbidden",
			"message": "You don't have permission to access this resource",
			"code":    "INSUFFICIENT_PERMISSIONS",
		})
	}
}

func GetUserContext(c *gin.Context) (UserContext, bool) {
	v, ok := c.Get(UserContextKey)
	if !ok {
		return UserContext{}, false
	}
	user, ok := v.(UserContext)
	return user, ok
}

// Actor names the caller for audit columns such as postedBy.
func Actor(c *gin.Context) string {
	if user, ok := GetUserContext(c); ok && user.Username != "" {
		return user.Username
	}
	return "system"
}
