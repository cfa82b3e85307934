package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys populated by Middleware.
const (
	ContextUserID = "auth.user_id"
	ContextRole   = "auth.role"
)

// Middleware returns a gin handler that requires a valid bearer token and,
// when roles are given, one of those roles.
func Middleware(issuer *TokenIssuer, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "COMMON_003",
				"message": "missing bearer token",
			})
			return
		}

		claims, err := issuer.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "COMMON_003",
				"message": "invalid or expired token",
			})
			return
		}

		if len(roles) > 0 && !contains(roles, claims.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "COMMON_003",
				"message": "insufficient role",
			})
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
