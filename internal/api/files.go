package api

import (
	"mime"          // Content types by extension
	"net/http"      // HTTP status codes
	"path/filepath" // File extensions
	"strings"       // Path trimming

	"eventflow/internal/storage" // Object store

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// ServeFileHandler streams a stored object. Object paths are unguessable and
// the handler is mounted without authentication so attachment URLs can be shared.
func ServeFileHandler(objects storage.ObjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := strings.TrimPrefix(c.Param("path"), "/")
		rc, err := objects.Open(c.Request.Context(), p)
		if err != nil {
			respondError(c, err, "Failed to open file", logrus.Fields{"path": p})
			return
		}
		defer rc.Close()

		contentType := mime.TypeByExtension(filepath.Ext(p))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
			"Content-Disposition": `inline; filename="` + storage.FileNameFromPath(p) + `"`,
		})
	}
}
