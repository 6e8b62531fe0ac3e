package api

import (
	"net/http" // HTTP status codes
	"time"     // Token lifetime

	"eventflow/internal/auth"   // Identity provider
	"eventflow/internal/domain" // Importing domain models
	"eventflow/internal/store"  // Document store
	"eventflow/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// SignUpRequest is the body of POST /user
type SignUpRequest struct {
	Email    string      `json:"email" binding:"required"`    // Login email
	Password string      `json:"password" binding:"required"` // Plain password, hashed by the provider
	Role     domain.Role `json:"role" binding:"required"`     // producer or agency
}

// LoginRequest is the body of POST /user/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Login email
	Password string `json:"password" binding:"required"` // Plain password
}

// AuthResponse carries the session token
type AuthResponse struct {
	Token   string              `json:"token"`             // JWT token
	Profile *domain.UserProfile `json:"profile,omitempty"` // Set on sign-up
}

// SignUpHandler creates the account and its profile, then signs the user in
func SignUpHandler(st *store.Store, idp auth.IdentityProvider, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignUpRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Reject the role before any account exists
		if !req.Role.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be producer or agency"})
			return
		}
		ctx := c.Request.Context()
		account, err := idp.CreateAccount(ctx, req.Email, req.Password)
		if err != nil {
			respondError(c, err, "Failed to create account", logrus.Fields{"email": req.Email})
			return
		}
		sess := domain.Session{UserID: account.ID, Email: account.Email, Role: req.Role}
		profile, err := st.CreateUserProfile(ctx, sess, req.Role, account.Email)
		if err != nil {
			respondError(c, err, "Failed to create profile", logrus.Fields{"user_id": account.ID})
			return
		}
		token, err := utils.GenerateJWT(account, jwtSecret, ttl)
		if err != nil {
			respondError(c, err, "Failed to generate token", logrus.Fields{"user_id": account.ID})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": account.ID,
			"role":    req.Role,
		}).Info("User signed up")
		c.JSON(http.StatusCreated, AuthResponse{Token: token, Profile: profile})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(idp auth.IdentityProvider, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		account, err := idp.SignIn(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err, "Failed to sign in", logrus.Fields{"email": req.Email})
			return
		}
		token, err := utils.GenerateJWT(account, jwtSecret, ttl)
		if err != nil {
			respondError(c, err, "Failed to generate token", logrus.Fields{"user_id": account.ID})
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}
