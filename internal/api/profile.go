package api

import (
	"net/http" // HTTP status codes

	"eventflow/internal/domain"     // Importing domain models
	"eventflow/internal/middleware" // Session access
	"eventflow/internal/store"      // Document store

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// GetProfileHandler returns the caller's profile
func GetProfileHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		profile, err := st.GetUserProfile(c.Request.Context(), sess)
		if err != nil {
			respondError(c, err, "Failed to load profile", logrus.Fields{"user_id": sess.UserID})
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// UpdateProfileHandler merges name, phone and company into the caller's profile
func UpdateProfileHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req domain.ProfileUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		profile, err := st.UpdateUserProfile(c.Request.Context(), sess, req)
		if err != nil {
			respondError(c, err, "Failed to update profile", logrus.Fields{"user_id": sess.UserID})
			return
		}
		logrus.WithField("user_id", sess.UserID).Info("Profile updated")
		c.JSON(http.StatusOK, profile)
	}
}
