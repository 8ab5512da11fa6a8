package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "estate-api/internal/transport/http/response"
)

// ConcurrencyLimit caps in-flight requests to protect the database.
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if !sem.TryAcquire(1) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, resp.Fail("server busy"))
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
