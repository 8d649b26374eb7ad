package testutil

import (
	"context"
	"dashcache/internal/cache"
	"dashcache/internal/config"
	"dashcache/internal/datasource"
	"dashcache/internal/jobs"
	"dashcache/internal/middlewares"
	"dashcache/internal/mocks"
	"dashcache/internal/timerange"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"
)

// TestContext holds everything needed for testing
type TestContext struct {
	AppContext     *middlewares.AppContext
	Request        *http.Request
	Response       *httptest.ResponseRecorder
	MockController *gomock.Controller
	MockExecutor   *mocks.MockExecutor
	LogHandler     *TestLogHandler
}

// NewTestContextWithURL creates a complete test setup with sensible defaults:
// a data source over a mocked executor with caching enabled and an empty
// panel store.
func NewTestContextWithURL(t *testing.T, method, url string) *TestContext {
	return NewTestContextWithBody(t, method, url, "")
}

// NewTestContextWithBody is NewTestContextWithURL with a request body.
func NewTestContextWithBody(t *testing.T, method, url, body string) *TestContext {
	cfg := &config.Config{}

	logHandler := NewTestLogHandler()
	logger := slog.New(logHandler)

	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)

	rangeCache := cache.NewRelativeRangeCache(cache.NewMemStore(logger), timerange.NewAnalyzer(0), logger)
	ds := datasource.New(executor, datasource.Options{Cache: rangeCache}, logger)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	rr := httptest.NewRecorder()

	appCtx := &middlewares.AppContext{
		Context:    req.Context(),
		Config:     cfg,
		Logger:     logger,
		DataSource: ds,
		Panels:     jobs.NewPanelStore(),
		Request:    req,
		Response:   rr,
	}

	return &TestContext{
		AppContext:     appCtx,
		Request:        req,
		Response:       rr,
		MockController: ctrl,
		MockExecutor:   executor,
		LogHandler:     logHandler,
	}
}

// Finish should be called at the end of tests to clean up mocks
func (tc *TestContext) Finish() {
	if tc.MockController != nil {
		tc.MockController.Finish()
	}
}

func (tc *TestContext) AssertLogContains(t *testing.T, level slog.Level, message string) {
	if !tc.LogHandler.ContainsMessage(level, message) {
		t.Errorf("Expected to find log entry with level %v containing message: %s", level, message)
	}
}

// CallHandler executes a handler with the test context
func (tc *TestContext) CallHandler(handler middlewares.AppHandler) {
	handler(tc.AppContext)
}

// AssertStatus checks the HTTP status code
func (tc *TestContext) AssertStatus(t *testing.T, expectedStatus int) {
	if tc.Response.Code != expectedStatus {
		t.Errorf("Expected status %d, got %d", expectedStatus, tc.Response.Code)
	}
}

// AssertContentType checks the content type header
func (tc *TestContext) AssertContentType(t *testing.T, expectedType string) {
	if ct := tc.Response.Header().Get("Content-Type"); ct != expectedType {
		t.Errorf("Expected content type %s, got %s", expectedType, ct)
	}
}

// GetJSONResponse parses the response body as JSON
func (tc *TestContext) GetJSONResponse(t *testing.T) map[string]interface{} {
	var response map[string]interface{}
	if err := json.Unmarshal(tc.Response.Body.Bytes(), &response); err != nil {
		t.Fatalf("Could not parse JSON response: %v", err)
	}
	return response
}

// GetJSONResponseArray parses the response body as a JSON array
func (tc *TestContext) GetJSONResponseArray(t *testing.T) []interface{} {
	var response []interface{}
	if err := json.Unmarshal(tc.Response.Body.Bytes(), &response); err != nil {
		t.Fatalf("Could not parse JSON array response: %v", err)
	}
	return response
}

// DecodeJSONLines decodes a newline delimited JSON body into values of type T.
func DecodeJSONLines[T any](t *testing.T, body string) []T {
	t.Helper()

	var out []T
	dec := json.NewDecoder(strings.NewReader(body))
	for dec.More() {
		var v T
		if err := dec.Decode(&v); err != nil {
			t.Fatalf("Could not parse JSON line: %v", err)
		}
		out = append(out, v)
	}
	return out
}

// AssertJSONString checks a specific string field in a JSON response
func (tc *TestContext) AssertJSONString(t *testing.T, field string, expected string) {
	response := tc.GetJSONResponse(t)
	actual, exists := response[field]

	if !exists {
		t.Errorf("Field %s not found in response", field)
		return
	}

	actualString, ok := actual.(string)
	if !ok {
		t.Errorf("Expected %s to be a string, got %T", field, actual)
		return
	}

	if actualString != expected {
		t.Errorf("Expected %s to be %q, got %q", field, expected, actualString)
	}
}

// WithConfig allows you to override the default config for specific tests
func (tc *TestContext) WithConfig(cfg *config.Config) *TestContext {
	tc.AppContext.Config = cfg
	return tc
}

// WithoutCache replaces the data source with one that never caches.
func (tc *TestContext) WithoutCache() *TestContext {
	tc.AppContext.DataSource = datasource.New(tc.MockExecutor, datasource.Options{}, tc.AppContext.Logger)
	return tc
}

// Helper to add query parameters to the request
func (tc *TestContext) WithQueryParam(key, value string) *TestContext {
	q := tc.Request.URL.Query()
	q.Add(key, value)
	tc.Request.URL.RawQuery = q.Encode()
	return tc
}

// WithURLParam sets a chi route parameter on the request.
func (tc *TestContext) WithURLParam(key, value string) *TestContext {
	return tc.WithRequest(withURLParam(tc.Request, key, value))
}

// WithRequest allows you to set a custom request (useful for tests that don't use URL constructor)
func (tc *TestContext) WithRequest(req *http.Request) *TestContext {
	tc.Request = req
	tc.AppContext.Request = req
	tc.AppContext.Context = req.Context()
	return tc
}

// WithContext swaps the request context, e.g. for a cancellable one.
func (tc *TestContext) WithContext(ctx context.Context) *TestContext {
	return tc.WithRequest(tc.Request.WithContext(ctx))
}
