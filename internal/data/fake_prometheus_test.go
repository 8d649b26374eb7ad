package data

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakePrometheus answers range queries with one sample per step between
// start and end, so pages can be checked for gaps and overlaps.
type fakePrometheus struct {
	mu       sync.Mutex
	requests []fakeRequest
	failOn   string
	labels   []string
	values   map[string][]string
}

type fakeRequest struct {
	Path     string
	Form     url.Values
	Username string
	Password string
}

func newFakePrometheus(t *testing.T) (*fakePrometheus, *httptest.Server) {
	t.Helper()
	fake := &fakePrometheus{
		labels: []string{"__name__", "asset", "site"},
		values: map[string][]string{
			"__name__": {"turbine_rotations_per_second", "turbine_temperature", "node_load1"},
			"asset":    {"turbine-1", "turbine-2"},
		},
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, srv
}

func (f *fakePrometheus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, err.Error())
		return
	}

	username, password, _ := r.BasicAuth()
	f.mu.Lock()
	f.requests = append(f.requests, fakeRequest{Path: r.URL.Path, Form: r.Form, Username: username, Password: password})
	failOn := f.failOn
	f.mu.Unlock()

	query := r.Form.Get("query")
	if failOn != "" && strings.Contains(query, failOn) {
		writeError(w, "query failed: "+failOn)
		return
	}

	switch {
	case r.URL.Path == "/api/v1/query_range":
		f.queryRange(w, r.Form)
	case r.URL.Path == "/api/v1/query":
		ts := parseFloatTime(r.Form.Get("time"))
		writeData(w, map[string]any{
			"resultType": "vector",
			"result": []any{map[string]any{
				"metric": map[string]string{"__name__": "turbine_temperature", "asset": "turbine-1"},
				"value":  []any{float64(ts.UnixMilli()) / 1000, "42.5"},
			}},
		})
	case r.URL.Path == "/api/v1/labels":
		writeData(w, f.labels)
	case strings.HasPrefix(r.URL.Path, "/api/v1/label/"):
		name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v1/label/"), "/values")
		writeData(w, f.values[name])
	default:
		http.NotFound(w, r)
	}
}

func (f *fakePrometheus) queryRange(w http.ResponseWriter, form url.Values) {
	start := parseFloatTime(form.Get("start"))
	end := parseFloatTime(form.Get("end"))
	stepSeconds, _ := strconv.ParseFloat(form.Get("step"), 64)
	step := time.Duration(stepSeconds * float64(time.Second))

	if strings.Contains(form.Get("query"), "absent_metric") {
		writeData(w, map[string]any{"resultType": "matrix", "result": []any{}})
		return
	}

	var values []any
	for ts := start; !ts.After(end); ts = ts.Add(step) {
		values = append(values, []any{float64(ts.UnixMilli()) / 1000, fmt.Sprintf("%d", ts.Unix())})
	}

	writeData(w, map[string]any{
		"resultType": "matrix",
		"result": []any{map[string]any{
			"metric": map[string]string{"site": "north"},
			"values": values,
		}},
	})
}

func (f *fakePrometheus) failQueriesContaining(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOn = s
}

func (f *fakePrometheus) rangeRequests() []fakeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []fakeRequest
	for _, r := range f.requests {
		if r.Path == "/api/v1/query_range" {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakePrometheus) lastRequest() fakeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func parseFloatTime(s string) time.Time {
	f, _ := strconv.ParseFloat(s, 64)
	return time.UnixMilli(int64(math.Round(f * 1000))).UTC()
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": data})
}

func writeError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "errorType": "bad_data", "error": msg})
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
