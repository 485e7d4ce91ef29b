package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"socks-bot/internal/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newTestServer(health HealthChecker, resources ...closerFunc) (*Server, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	closers := make([]io.Closer, 0, len(resources))
	for _, r := range resources {
		closers = append(closers, r)
	}
	cfg := &config.Config{Server: config.ServerConfig{Port: "0"}}
	return NewServer(cfg, zap.NewNop(), health, reg, closers...), reg
}

func TestHealth(t *testing.T) {
	cases := []struct {
		name   string
		health StaticHealth
		code   int
	}{
		{"up", StaticHealth{"status": "up", "driver": "memory"}, http.StatusOK},
		{"down", StaticHealth{"status": "down", "error": "refused"}, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(tc.health)
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tc.code, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.health["status"], body["status"])
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, reg := newTestServer(StaticHealth{"status": "up"})
	promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "socks_bot_test_total",
		Help: "test counter",
	}).Inc()

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "socks_bot_test_total 1")
}

func TestClose_ClosesEveryResource(t *testing.T) {
	closed := 0
	srv, _ := newTestServer(StaticHealth{"status": "up"},
		func() error { closed++; return errors.New("already closed") },
		func() error { closed++; return nil },
	)

	assert.NoError(t, srv.Close())
	assert.Equal(t, 2, closed)
}
