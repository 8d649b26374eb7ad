package data

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// PrometheusClient is a thin wrapper over the Prometheus HTTP API, usable
// against Prometheus itself or Mimir's Prometheus-compatible endpoint.
type PrometheusClient struct {
	api    v1.API
	logger *slog.Logger
}

func NewPrometheusClient(baseUrl, username, password string, timeout time.Duration, logger *slog.Logger) (*PrometheusClient, error) {
	cfg := api.Config{
		Address: baseUrl,
	}

	var transport http.RoundTripper = api.DefaultRoundTripper
	if username != "" && password != "" {
		transport = &BasicAuthTransport{
			Username: username,
			Password: password,
			Proxied:  transport,
		}
	}

	cfg.Client = &http.Client{Transport: transport, Timeout: timeout}

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &PrometheusClient{api: v1.NewAPI(client), logger: logger}, nil
}

func (p *PrometheusClient) Query(ctx context.Context, query string, timestamp time.Time) (model.Value, error) {
	result, warnings, err := p.api.Query(ctx, query, timestamp)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	p.warn(warnings, "query", query)

	return result, nil
}

func (p *PrometheusClient) QueryRange(ctx context.Context, query string, r v1.Range) (model.Value, error) {
	result, warnings, err := p.api.QueryRange(ctx, query, r)
	if err != nil {
		return nil, fmt.Errorf("range query failed: %w", err)
	}

	p.warn(warnings, "query", query)

	return result, nil
}

func (p *PrometheusClient) LabelNames(ctx context.Context, matches []string, start, end time.Time) ([]string, error) {
	names, warnings, err := p.api.LabelNames(ctx, matches, start, end)
	if err != nil {
		return nil, fmt.Errorf("label names failed: %w", err)
	}

	p.warn(warnings, "matches", matches)

	return names, nil
}

func (p *PrometheusClient) LabelValues(ctx context.Context, label string, matches []string, start, end time.Time) ([]string, error) {
	values, warnings, err := p.api.LabelValues(ctx, label, matches, start, end)
	if err != nil {
		return nil, fmt.Errorf("label values for %q failed: %w", label, err)
	}

	p.warn(warnings, "label", label, "matches", matches)

	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}

	return out, nil
}

func (p *PrometheusClient) warn(warnings v1.Warnings, args ...any) {
	if len(warnings) > 0 {
		p.logger.Warn("prometheus returned warnings", append(args, "warnings", []string(warnings))...)
	}
}

type BasicAuthTransport struct {
	Username string
	Password string
	Proxied  http.RoundTripper
}

func (b *BasicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if b.Username != "" && b.Password != "" {
		req.SetBasicAuth(b.Username, b.Password)
	}
	return b.Proxied.RoundTrip(req)
}
