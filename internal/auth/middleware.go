package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextKeySubject = "token_subject"

// SubjectFromContext returns the username set by RequireToken. "" if not set.
func SubjectFromContext(c *gin.Context) string {
	v, ok := c.Get(contextKeySubject)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// RequireToken returns a middleware that checks the Authorization bearer
// token and sets its subject in context. Missing or invalid token gives 401.
func RequireToken(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
			return
		}
		subject, err := SubjectFromToken(strings.TrimPrefix(header, prefix), secret)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
			return
		}
		c.Set(contextKeySubject, subject)
		c.Next()
	}
}
