package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingController struct{}

func (pingController) RegisterRoutes(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func newTestServer() *Server {
	s := NewServer(ServerConfig{Host: "127.0.0.1", Port: "0"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.AddController(pingController{})
	return s
}

func TestServerConfig_Addr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", ServerConfig{Host: "0.0.0.0", Port: "8080"}.Addr())
}

func TestRouter_ControllerRoutes(t *testing.T) {
	r := newTestServer().Router()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouter_MetricsExposeRequests(t *testing.T) {
	r := newTestServer().Router()

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines", "глобальный реестр тоже отдаётся")
	assert.Contains(t, w.Body.String(), `calculator_http_requests_total{method="GET",route="/ping",status="200"} 1`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newTestServer().Router()

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
