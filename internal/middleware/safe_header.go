package middleware

import "github.com/gin-gonic/gin"

var safeHeaders = map[string]string{
	"X-Content-Type-Options": "nosniff",
	"X-Frame-Options":        "DENY",
	"X-XSS-Protection":       "1; mode=block",
	"X-Powered-By":           "",
	"Referrer-Policy":        "no-referrer",
	"Cache-Control":          "no-store",
}

// SafeHeader sets security-related headers on every response. HSTS is only
// sent in release mode so local http development keeps working.
func SafeHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		for k, v := range safeHeaders {
			c.Header(k, v)
		}
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}

		c.Next()
	}
}
