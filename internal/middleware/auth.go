package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/response"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware guards the back-office routes with a static bearer
// token. Missing credentials are 401, wrong credentials 403. An empty
// configured token locks the admin surface entirely.
func AdminAuthMiddleware(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")

		token := ""
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}

		if token == "" {
			response.JSON(c, http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Missing bearer token"))
			c.Abort()
			return
		}

		if adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
			response.JSON(c, http.StatusForbidden, response.Error(http.StatusForbidden, "Invalid admin token"))
			c.Abort()
			return
		}

		c.Set("admin", true)
		c.Next()
	}
}
