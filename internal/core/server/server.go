package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

func BuildServer(addr string, handler http.Handler, t Timeouts) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       t.Read,
		ReadHeaderTimeout: t.Read,
		WriteTimeout:      t.Write,
		IdleTimeout:       t.Idle,
		MaxHeaderBytes:    1 << 20,
	}
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }

// Start serves in the background; a listen failure is fatal.
func Start(srv *http.Server, l *zap.Logger) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("http server failed", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}()
}

func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
