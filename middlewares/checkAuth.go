package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ChurchPortal/services"
)

// CheckAuth guards the admin routes. It verifies the bearer token with the
// active authentication provider and requires an open console for the
// identity: a console is opened at login and closed at logout, so a verified
// token without one means the admin already signed out.
func CheckAuth(c *gin.Context) {

	authHeader := c.GetHeader("Authorization")

	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
		return
	}

	authToken := strings.Split(authHeader, " ")
	if len(authToken) != 2 || authToken[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
		return
	}

	session, err := services.GetAuthProvider().Verify(c.Request.Context(), authToken[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	console := services.GetConsole(session.UID)
	if console == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session closed. Please log in again."})
		return
	}

	c.Set("session", session)
	c.Set("console", console)

	c.Next()
}
