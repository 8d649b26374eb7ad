package middlewares

import (
	"dashcache/internal/config"
	"dashcache/internal/metrics"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppContextMiddleware(t *testing.T) {
	base := &AppContext{
		Config: &config.Config{},
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	}

	var seen *AppContext
	handler := AppContextMiddleware(base)(base.HandlerFunc(func(ctx *AppContext) {
		seen = ctx
		ctx.SetJSONStatus(http.StatusOK, "OK")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.NotNil(t, seen)
	assert.Same(t, base.Config, seen.Config)
	assert.Equal(t, "/api/v1/health", seen.Request.URL.Path)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"OK"}`, rr.Body.String())
}

func TestHandlerFuncWithoutAppContext(t *testing.T) {
	base := &AppContext{}
	rr := httptest.NewRecorder()

	base.HandlerFunc(func(ctx *AppContext) {
		t.Fatal("handler must not run without an app context")
	}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestMetricsMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/api/panels/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/panels/{name}", "404")
	before := testutil.ToFloat64(counter)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/panels/rotations", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
