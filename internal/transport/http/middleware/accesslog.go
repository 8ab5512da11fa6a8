package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type respWriter struct {
	gin.ResponseWriter
	size int
}

func (w *respWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// AccessLog logs one line per request with sensitive query values masked.
// Server errors are logged at error level.
func AccessLog(l *zap.Logger) gin.HandlerFunc {
	sensitiveKeys := map[string]struct{}{
		"password": {}, "pwd": {}, "token": {}, "authorization": {},
		"secret": {}, "client_secret": {}, "access_token": {},
	}

	mask := func(kv map[string][]string) map[string][]string {
		out := map[string][]string{}
		for k, v := range kv {
			lk := strings.ToLower(k)
			if _, ok := sensitiveKeys[lk]; ok {
				out[k] = []string{"****"}
			} else {
				out[k] = v
			}
		}
		return out
	}

	return func(c *gin.Context) {
		start := time.Now()
		w := &respWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		q := mask(c.Request.URL.Query())
		status := w.ResponseWriter.Status()
		log := l.Info
		if status >= http.StatusInternalServerError {
			log = l.Error
		}
		log("HTTP",
			zap.String("rid", c.GetString(KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("ua", c.Request.UserAgent()),
			zap.Any("query", q),
			zap.Int("size", w.size),
		)
	}
}
