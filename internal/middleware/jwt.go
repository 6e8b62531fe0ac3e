package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"eventflow/internal/domain" // Session type
	"eventflow/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// sessionKey is where the authenticated session is kept on the gin context
const sessionKey = "session"

// JWTAuthMiddleware validates bearer tokens and stores the session they carry
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		sess, err := utils.ParseJWT(tokenStr, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		SetSession(c, sess)
		c.Next()
	}
}

// SetSession stores the session on the request
func SetSession(c *gin.Context, sess domain.Session) {
	c.Set(sessionKey, sess)
}

// GetSession returns the session stored by JWTAuthMiddleware
func GetSession(c *gin.Context) (domain.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return domain.Session{}, false
	}
	sess, ok := v.(domain.Session)
	return sess, ok && sess.Valid()
}
