package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// getAdminKey reads the configured admin key. Resolved per request, like the
// AI service keys, so a key added after startup applies without a restart.
// Empty means the admin surface is unguarded.
func getAdminKey() string {
	return os.Getenv("ADMIN_KEY")
}

// checkAdminAuth validates "Authorization: Bearer <key>" against the
// configured key with a constant-time comparison. On failure the returned
// message and code describe the rejection.
func checkAdminAuth(c *gin.Context, key string) (message, code string, ok bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "Authorization header required", "AUTH_REQUIRED", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "Invalid authorization format. Use: Bearer <admin_key>", "AUTH_INVALID_FORMAT", false
	}

	if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(key)) != 1 {
		return "Invalid admin key", "AUTH_INVALID_KEY", false
	}

	return "", "", true
}

// AdminKeyAuth guards a route group with the admin key. With no ADMIN_KEY
// configured every request passes, which keeps local development open.
func AdminKeyAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := getAdminKey()
		if key == "" {
			c.Next()
			return
		}

		if message, code, ok := checkAdminAuth(c, key); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": message,
				"code":  code,
			})
			return
		}

		c.Next()
	}
}

// VerifyAdminKey reports whether the caller's stored admin key is still
// valid, so clients can drop a stale key without hitting a guarded route.
// POST /api/auth/verify
func VerifyAdminKey(c *gin.Context) {
	key := getAdminKey()
	if key == "" {
		c.JSON(http.StatusOK, gin.H{
			"valid":        true,
			"auth_enabled": false,
			"message":      "Authentication is not configured",
		})
		return
	}

	if message, code, ok := checkAdminAuth(c, key); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"valid": false,
			"error": message,
			"code":  code,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":        true,
		"auth_enabled": true,
	})
}

// GetAuthStatus reports whether the admin surface requires a key. Public.
// GET /api/auth/status
func GetAuthStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"auth_enabled": getAdminKey() != "",
	})
}
