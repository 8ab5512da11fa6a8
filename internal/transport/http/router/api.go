package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"estate-api/internal/core/auth"
	"estate-api/internal/transport/http/handler"
	mdw "estate-api/internal/transport/http/middleware"
	resp "estate-api/internal/transport/http/response"
)

type Deps struct {
	Log            *zap.Logger
	JWT            *auth.JWTer
	Users          *handler.UserHandler
	Events         *handler.EventHandler
	RequestTimeout time.Duration
}

func NewAPIEngine(d Deps) *gin.Engine {
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 10 * time.Second
	}
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		ginzap.CustomRecoveryWithZap(d.Log, true, func(c *gin.Context, _ any) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Fail("Internal server error"))
		}),
		cors.Default(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(d.RequestTimeout),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "estate api running") })
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	user := api.Group("/user")
	user.POST("/signup", mdw.RateLimitPerIP(1, 10), d.Users.Signup)
	user.GET("/me", mdw.SessionAuth(d.JWT, ""), d.Users.Me)

	r.POST("/api/inngest", d.Events.Ingest)

	return r
}
