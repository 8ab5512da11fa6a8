package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAddr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", Addr("0.0.0.0", 8080))
	assert.Equal(t, ":9090", Addr("", 9090))
}

func TestStartAndShutdown(t *testing.T) {
	srv := BuildServer("127.0.0.1:0", http.NotFoundHandler(), Timeouts{Read: time.Second, Write: time.Second, Idle: time.Second})
	assert.Equal(t, time.Second, srv.ReadTimeout)

	Start(srv, zap.NewNop())
	require.NoError(t, Shutdown(srv, time.Second))
}
