// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/finyara/leadflow/internal/config"
	"github.com/finyara/leadflow/internal/core"
	"github.com/finyara/leadflow/internal/health"
)

type okChecker struct{}

func (okChecker) Ping(context.Context) error { return nil }

func newTestServer(h *health.Handler) *Server {
	srv := New(Config{
		ServerConfig: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ShutdownTimeout: time.Second,
		},
		HealthHandler: h,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	srv.Router().Get("/v1/ping", func(w http.ResponseWriter, _ *http.Request) {
		core.OK(w, "pong")
	})
	srv.Router().Get("/v1/boom", func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	})
	if h != nil {
		h.RegisterRoutes(srv.Router())
	}
	return srv
}

func serve(srv *Server, method, path string) (*httptest.ResponseRecorder, core.ErrorResponse) {
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	var body core.ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestUnknownRouteEnvelope(t *testing.T) {
	srv := newTestServer(nil)

	rec, body := serve(srv, http.MethodGet, "/v1/nowhere")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.False(t, body.Success)
	require.Equal(t, "The requested URL /v1/nowhere was not found on this server", body.Message)
}

func TestWrongMethodEnvelope(t *testing.T) {
	srv := newTestServer(nil)

	rec, body := serve(srv, http.MethodDelete, "/v1/ping")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "METHOD_NOT_ALLOWED", body.Code)
}

func TestPanicBecomes500(t *testing.T) {
	srv := newTestServer(nil)

	rec, body := serve(srv, http.MethodGet, "/v1/boom")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.False(t, body.Success)
}

func TestShutdownFailsReadinessFirst(t *testing.T) {
	h := health.NewHandler("test",
		health.Dependency{Name: "database", Pinger: okChecker{}},
		health.Dependency{Name: "redis", Pinger: okChecker{}},
	)
	srv := newTestServer(h)

	rec, _ := serve(srv, http.MethodGet, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, srv.Shutdown(context.Background(), 0))

	rec, _ = serve(srv, http.MethodGet, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec, _ = serve(srv, http.MethodGet, "/livez")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
