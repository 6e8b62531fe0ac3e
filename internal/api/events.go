package api

import (
	"net/http" // HTTP status codes
	"time"     // Event dates

	"eventflow/internal/domain"     // Importing domain models
	"eventflow/internal/middleware" // Session access
	"eventflow/internal/store"      // Document store
	"eventflow/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// dateLayouts are the accepted forms of an event date
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02"}

// CreateEventRequest is the body of POST /events
type CreateEventRequest struct {
	Name        string             `json:"name" binding:"required"` // Event name
	Date        string             `json:"date" binding:"required"` // RFC 3339 timestamp or YYYY-MM-DD
	Status      domain.EventStatus `json:"status"`                  // Defaults to planning
	Description string             `json:"description"`
	Location    string             `json:"location"`
}

// UpdateStatusRequest is the body of PATCH /events/:id/status
type UpdateStatusRequest struct {
	Status domain.EventStatus `json:"status" binding:"required"`
}

// parseEventDate accepts the layouts in dateLayouts
func parseEventDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, domain.Validationf("invalid event date %q: %v", s, lastErr)
}

// CreateEventHandler stores a new event for the caller
func CreateEventHandler(st *store.Store, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateEventRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		date, err := parseEventDate(req.Date)
		if err != nil {
			respondError(c, err, "Invalid event date", nil)
			return
		}
		ctx := c.Request.Context()
		event, err := st.CreateEvent(ctx, sess, domain.NewEvent{
			Name:        req.Name,
			Date:        date,
			Status:      req.Status,
			Description: req.Description,
			Location:    req.Location,
		})
		if err != nil {
			respondError(c, err, "Failed to create event", logrus.Fields{"user_id": sess.UserID})
			return
		}
		cache.Invalidate(ctx, utils.EventsKey(sess.UserID)) // List changed
		logrus.WithFields(logrus.Fields{
			"user_id":  sess.UserID,
			"event_id": event.ID,
		}).Info("Event created")
		c.JSON(http.StatusCreated, event)
	}
}

// ListEventsHandler returns the caller's events, latest date first
func ListEventsHandler(st *store.Store, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		key := utils.EventsKey(sess.UserID)
		var events []domain.Event
		// Try cache first
		if cache.Get(ctx, key, &events) {
			c.JSON(http.StatusOK, events)
			return
		}
		events, err := st.GetUserEvents(ctx, sess)
		if err != nil {
			respondError(c, err, "Failed to list events", logrus.Fields{"user_id": sess.UserID})
			return
		}
		cache.Set(ctx, key, events)
		c.JSON(http.StatusOK, events)
	}
}

// GetEventHandler returns one of the caller's events
func GetEventHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		event, err := st.GetEvent(c.Request.Context(), sess, c.Param("id"))
		if err != nil {
			respondError(c, err, "Failed to load event", logrus.Fields{"user_id": sess.UserID, "event_id": c.Param("id")})
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

// UpdateEventStatusHandler moves an event to another status
func UpdateEventStatusHandler(st *store.Store, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		eventID := c.Param("id")
		event, err := st.UpdateEventStatus(ctx, sess, eventID, req.Status)
		if err != nil {
			respondError(c, err, "Failed to update event status", logrus.Fields{"user_id": sess.UserID, "event_id": eventID})
			return
		}
		cache.Invalidate(ctx, utils.EventsKey(sess.UserID))
		logrus.WithFields(logrus.Fields{
			"user_id":  sess.UserID,
			"event_id": eventID,
			"status":   event.Status,
		}).Info("Event status updated")
		c.JSON(http.StatusOK, event)
	}
}
