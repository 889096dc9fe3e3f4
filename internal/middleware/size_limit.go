package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipart boundaries and part headers count against the body limit, so the
// cap gets a little headroom beyond the advertised file size.
const multipartOverhead int64 = 8 * 1024

// SizeLimit caps the request body at maxBodyBytes. Reads past the cap fail
// with http.MaxBytesError, which handlers surface as 413.
func SizeLimit(maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes+multipartOverhead)

		c.Next()
	}
}
