package utilities

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerSchema = "Bearer "

// ExtractBearerToken pulls the bearer token out of the Authorization header.
func ExtractBearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")

	token := strings.TrimPrefix(authHeader, bearerSchema)
	if token == authHeader || token == "" {
		return "", fmt.Errorf("Invalid authorization header")
	}

	return token, nil
}
