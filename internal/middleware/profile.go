package middleware

import (
	"context"  // Context for store lookups
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"eventflow/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// ProfileLoader is the store lookup the profile middleware needs
type ProfileLoader interface {
	GetUserProfile(ctx context.Context, sess domain.Session) (*domain.UserProfile, error)
}

// RequireProfile loads the caller's profile on each request and records the
// role on the session. Callers without a profile are refused.
func RequireProfile(profiles ProfileLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := GetSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		profile, err := profiles.GetUserProfile(c.Request.Context(), sess)
		if errors.Is(err, domain.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Profile required"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": sess.UserID,
				"error":   err.Error(),
			}).Error("Failed to load profile")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
			return
		}
		sess.Role = profile.Role
		SetSession(c, sess)
		c.Next()
	}
}
