package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"eventflow/internal/domain" // Error kinds

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error response. Client errors carry the error text;
// server errors are logged with fields and answered with fallback.
func respondError(c *gin.Context, err error, fallback string, fields logrus.Fields) {
	status := statusFor(err)
	if fields == nil {
		fields = logrus.Fields{}
	}
	fields["error"] = err.Error()
	fields["request_id"] = c.GetString("request_id")
	if status == http.StatusInternalServerError {
		logrus.WithFields(fields).Error(fallback)
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	logrus.WithFields(fields).Warn(fallback)
	c.JSON(status, gin.H{"error": err.Error()})
}
