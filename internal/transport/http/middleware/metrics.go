package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "estate", Name: "http_requests_total", Help: "Count of HTTP requests"},
		[]string{"path", "method", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "estate",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"},
	)
	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "estate", Name: "http_requests_in_flight", Help: "Requests being served"},
	)
)

func init() { prometheus.MustRegister(httpReqTotal, httpLatency, httpInFlight) }

// Metrics records per-route counters; unmatched paths share one label so
// scanners cannot blow up cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpReqTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
