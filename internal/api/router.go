package api

import (
	"time" // Token lifetime

	"eventflow/internal/auth"       // Identity provider
	"eventflow/internal/middleware" // Custom package for middleware
	"eventflow/internal/storage"    // Object store
	"eventflow/internal/store"      // Document store
	"eventflow/internal/utils"      // Read cache

	"github.com/gin-gonic/gin" // Gin web framework
)

// Deps is everything the HTTP handlers are built from
type Deps struct {
	Store     *store.Store
	Identity  auth.IdentityProvider
	Objects   storage.ObjectStore
	Cache     *utils.Cache // May be nil
	JWTSecret string
	TokenTTL  time.Duration
}

// NewRouter registers every route on a fresh gin engine
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())

	// Auth routes
	r.POST("/user", SignUpHandler(d.Store, d.Identity, d.JWTSecret, d.TokenTTL)) // Sign-up endpoint
	r.POST("/user/login", LoginHandler(d.Identity, d.JWTSecret, d.TokenTTL))     // Login endpoint

	// Stored objects, addressed by the URLs kept on attachments
	r.GET("/files/*path", ServeFileHandler(d.Objects))

	// Everything below needs a token and a profile
	protected := r.Group("")
	protected.Use(middleware.JWTAuthMiddleware(d.JWTSecret), middleware.RequireProfile(d.Store))

	protected.GET("/profile", GetProfileHandler(d.Store))
	protected.PUT("/profile", UpdateProfileHandler(d.Store))

	events := protected.Group("/events")
	events.POST("", CreateEventHandler(d.Store, d.Cache))
	events.GET("", ListEventsHandler(d.Store, d.Cache))
	events.GET("/:id", GetEventHandler(d.Store))
	events.PATCH("/:id/status", UpdateEventStatusHandler(d.Store, d.Cache))
	events.GET("/:id/budget", GetEventBudgetHandler(d.Store, d.Cache))

	budgets := protected.Group("/budgets")
	budgets.POST("/:id/items", AddBudgetItemHandler(d.Store, d.Cache))
	budgets.POST("/:id/items/:itemId/attachment", UploadAttachmentHandler(d.Store, d.Objects, d.Cache))

	return r
}
