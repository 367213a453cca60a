package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hearthguild/server/config"
)

const CharIDKey = "char_id"

// Auth validates the Bearer JWT token and stores the caller's character ID.
func Auth(sec config.SecurityConfig) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := ParseToken(strings.TrimPrefix(header, "Bearer "), sec.JWTSecret)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		ctx.Set(CharIDKey, claims.CharID)
		ctx.Next()
	}
}

// GetCharID retrieves the authenticated character ID from the Gin context.
func GetCharID(c *gin.Context) int64 {
	if v, exists := c.Get(CharIDKey); exists {
		return v.(int64)
	}
	return 0
}
