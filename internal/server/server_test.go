package server

import (
	"bytes"
	"context"
	"dashcache/internal/config"
	"dashcache/internal/dataframe"
	"dashcache/internal/datasource"
	"dashcache/internal/jobs"
	"dashcache/internal/middlewares"
	"dashcache/internal/models"
	"dashcache/internal/paginator"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return newLogger(config.LogConfig{Level: "error"}, io.Discard)
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{CORS: config.DefaultCORSConfig}
	cfg.Data.MaxDataPoints = 100
	cfg.Data.Panels = []config.PanelConfig{{Name: "rotations"}}

	executor := paginator.ExecutorFunc(func(_ context.Context, r models.Request) (models.Response, error) {
		return models.Response{
			Key:   r.RequestID,
			State: models.LoadingStateDone,
			Frames: []dataframe.Frame{{
				RefID: r.Targets[0].RefID,
				Fields: []dataframe.Field{
					dataframe.NewTimeField(r.Range.To),
					dataframe.NewNumberField("value", "", 42),
				},
			}},
		}, nil
	})

	logger := testLogger()
	ds := datasource.New(executor, datasource.Options{}, logger)
	panels := jobs.NewPanelStore()
	panels.Set(jobs.PanelResult{Name: "rotations", Response: models.Response{State: models.LoadingStateDone}, UpdatedAt: time.Now()})

	appCtx := middlewares.NewAppContext(context.Background(), cfg, logger, ds, panels)
	srv := httptest.NewServer(setupRouter(appCtx))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		expectedType   string
	}{
		{name: "health", method: http.MethodGet, path: "/api/v1/health", expectedStatus: http.StatusOK, expectedType: "application/json"},
		{name: "panels", method: http.MethodGet, path: "/api/panels", expectedStatus: http.StatusOK, expectedType: "application/json"},
		{name: "panel by name", method: http.MethodGet, path: "/api/panels/rotations", expectedStatus: http.StatusOK, expectedType: "application/json"},
		{name: "unknown panel", method: http.MethodGet, path: "/api/panels/nope", expectedStatus: http.StatusNotFound, expectedType: "application/json"},
		{name: "cache", method: http.MethodGet, path: "/api/cache", expectedStatus: http.StatusOK, expectedType: "application/json"},
		{name: "query types", method: http.MethodGet, path: "/api/query-types", expectedStatus: http.StatusOK, expectedType: "application/json"},
		{
			name:           "query",
			method:         http.MethodPost,
			path:           "/api/query",
			body:           `{"targets":[{"refId":"A","queryType":"GetMetricValue","metrics":[{"metricId":"up"}]}]}`,
			expectedStatus: http.StatusOK,
			expectedType:   "application/x-ndjson",
		},
		{name: "unknown route", method: http.MethodGet, path: "/api/nope", expectedStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodGet, path: "/api/query", expectedStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)

			resp, err := srv.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedType != "" {
				assert.Equal(t, tt.expectedType, resp.Header.Get("Content-Type"))
			}
		})
	}
}

func TestRouter_QueryStreamEndsDone(t *testing.T) {
	srv := testServer(t)

	body := `{"targets":[{"refId":"A","queryType":"GetMetricHistory","metrics":[{"metricId":"up"}]}],"range":{"from":"now-6h","to":"now"}}`
	resp, err := srv.Client().Post(srv.URL+"/api/query", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(raw), []byte("\n"))
	require.Len(t, lines, 1)

	var last struct {
		State string            `json:"state"`
		Data  []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(lines[0], &last))
	assert.Equal(t, "Done", last.State)
	assert.Len(t, last.Data, 1)
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv := testServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/query", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestDebugRouter(t *testing.T) {
	srv := httptest.NewServer(setupDebugRouter())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "panel", "rotations")

	out := buf.String()
	assert.NotContains(t, out, "hidden")

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &record))
	assert.Equal(t, "shown", record["msg"])
	assert.Equal(t, "rotations", record["panel"])
}

func TestNewDataSource(t *testing.T) {
	disabled := false
	cfg := &config.Config{
		Data:  config.DataConfig{PrometheusURL: "http://localhost:9090", PageWindow: time.Hour, RequestIDs: config.RequestIDsUUID},
		Cache: config.CacheConfig{Enabled: &disabled},
	}

	ds, err := NewDataSource(cfg, testLogger())
	require.NoError(t, err)
	assert.Nil(t, ds.Cache())

	cfg.Cache.Enabled = nil
	ds, err = NewDataSource(cfg, testLogger())
	require.NoError(t, err)
	assert.NotNil(t, ds.Cache())
}
