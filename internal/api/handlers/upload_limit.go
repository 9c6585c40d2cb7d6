package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LimitUploadSize caps the request body at maxBytes. A non-positive limit disables the cap.
func LimitUploadSize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
