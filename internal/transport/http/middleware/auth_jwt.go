package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estate-api/internal/core/auth"
	resp "estate-api/internal/transport/http/response"
	"estate-api/internal/transport/http/session"
)

// SessionAuth requires a valid session token from the cookie or bearer header
// and exposes its claims as "claims", "userId" and "role".
func SessionAuth(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := session.Token(c)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Fail("missing token"))
			return
		}
		claims, err := j.Parse(tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Fail("invalid token"))
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Fail("forbidden"))
			return
		}
		c.Set("claims", claims)
		c.Set("userId", claims.UID)
		c.Set("role", claims.Role)
		c.Next()
	}
}
