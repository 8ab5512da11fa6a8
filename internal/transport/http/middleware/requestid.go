package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const KeyRequestID = "X-Request-ID"

const maxRequestIDLen = 128

// RequestID reuses a sane inbound X-Request-ID or mints a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Request.Header.Get(KeyRequestID)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(KeyRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Next()
	}
}
