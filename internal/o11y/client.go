package o11y

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alexisbeaulieu97/coyote/internal/config"
	"github.com/alexisbeaulieu97/coyote/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/coyote/internal/ports"
)

// QueryResult is the outcome of one backend query. Failed and not-configured
// queries are ordinary results, never errors: the investigation proceeds with
// whatever evidence is available.
type QueryResult struct {
	Query   string
	Source  string
	Success bool
	Data    json.RawMessage
	Error   string
}

// InvestigationResults groups the per-backend evidence gathered around a
// failure. Nil entries mean the backend is not configured.
type InvestigationResults struct {
	Logs    *QueryResult
	Metrics *QueryResult
	Traces  *QueryResult
}

const (
	sourcePrometheus = "prometheus"
	sourceLoki       = "loki"
	sourceTempo      = "tempo"

	defaultQueryTimeout = 30 * time.Second
)

// Client queries Prometheus, Loki, and Tempo. Each backend is optional.
type Client struct {
	prometheusURL string
	lokiURL       string
	tempoURL      string
	httpClient    *http.Client
	logger        ports.Logger
}

// NewClient builds a client from the observability configuration.
func NewClient(cfg config.ObservabilityConfig, logger ports.Logger) *Client {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Client{
		prometheusURL: cfg.PrometheusURL,
		lokiURL:       cfg.LokiURL,
		tempoURL:      cfg.TempoURL,
		httpClient:    &http.Client{Timeout: defaultQueryTimeout},
		logger:        logger,
	}
}

// Configured reports whether at least one backend URL is set.
func (c *Client) Configured() bool {
	return c.prometheusURL != "" || c.lokiURL != "" || c.tempoURL != ""
}

func notConfigured(query, source string) *QueryResult {
	return &QueryResult{
		Query:   query,
		Source:  source,
		Success: false,
		Error:   source + " URL not configured",
	}
}

func (c *Client) failed(ctx context.Context, query, source string, err error) *QueryResult {
	c.logger.Warn(ctx, "observability query failed", "source", source, "error", err)
	return &QueryResult{
		Query:   query,
		Source:  source,
		Success: false,
		Error:   err.Error(),
	}
}

// QueryMetrics runs a PromQL range query over [start, end] at the given step.
func (c *Client) QueryMetrics(ctx context.Context, query string, start, end time.Time, step string) *QueryResult {
	if c.prometheusURL == "" {
		return notConfigured(query, sourcePrometheus)
	}
	if step == "" {
		step = "1m"
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("start", strconv.FormatInt(start.Unix(), 10))
	params.Set("end", strconv.FormatInt(end.Unix(), 10))
	params.Set("step", step)

	var decoded struct {
		Status string `json:"status"`
		Data   struct {
			Result json.RawMessage `json:"result"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, c.prometheusURL+"/api/v1/query_range", params, &decoded); err != nil {
		return c.failed(ctx, query, sourcePrometheus, err)
	}

	return &QueryResult{
		Query:   query,
		Source:  sourcePrometheus,
		Success: decoded.Status == "success",
		Data:    decoded.Data.Result,
	}
}

// QueryLogs runs a LogQL range query. Loki takes nanosecond timestamps.
func (c *Client) QueryLogs(ctx context.Context, query string, start, end time.Time, limit int) *QueryResult {
	if c.lokiURL == "" {
		return notConfigured(query, sourceLoki)
	}
	if limit <= 0 {
		limit = 100
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("start", strconv.FormatInt(start.UnixNano(), 10))
	params.Set("end", strconv.FormatInt(end.UnixNano(), 10))
	params.Set("limit", strconv.Itoa(limit))

	var decoded struct {
		Status string `json:"status"`
		Data   struct {
			Result json.RawMessage `json:"result"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, c.lokiURL+"/loki/api/v1/query_range", params, &decoded); err != nil {
		return c.failed(ctx, query, sourceLoki, err)
	}

	return &QueryResult{
		Query:   query,
		Source:  sourceLoki,
		Success: decoded.Status == "success",
		Data:    decoded.Data.Result,
	}
}

// QueryTraces runs a TraceQL search query.
func (c *Client) QueryTraces(ctx context.Context, query string, start, end time.Time, limit int) *QueryResult {
	if c.tempoURL == "" {
		return notConfigured(query, sourceTempo)
	}
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("start", strconv.FormatInt(start.Unix(), 10))
	params.Set("end", strconv.FormatInt(end.Unix(), 10))
	params.Set("limit", strconv.Itoa(limit))

	var decoded struct {
		Traces json.RawMessage `json:"traces"`
	}
	if err := c.getJSON(ctx, c.tempoURL+"/api/search", params, &decoded); err != nil {
		return c.failed(ctx, query, sourceTempo, err)
	}

	return &QueryResult{
		Query:   query,
		Source:  sourceTempo,
		Success: true,
		Data:    decoded.Traces,
	}
}

// GetTrace fetches a single trace by ID.
func (c *Client) GetTrace(ctx context.Context, traceID string) *QueryResult {
	if c.tempoURL == "" {
		return notConfigured(traceID, sourceTempo)
	}

	var decoded json.RawMessage
	if err := c.getJSON(ctx, c.tempoURL+"/api/traces/"+url.PathEscape(traceID), nil, &decoded); err != nil {
		return c.failed(ctx, traceID, sourceTempo, err)
	}

	return &QueryResult{
		Query:   traceID,
		Source:  sourceTempo,
		Success: true,
		Data:    decoded,
	}
}

// InvestigateError fans out to every configured backend, gathering logs,
// error-rate metrics, and failed traces in a window around the failure time.
func (c *Client) InvestigateError(ctx context.Context, errorMessage string, at time.Time, window time.Duration) InvestigationResults {
	if window <= 0 {
		window = 5 * time.Minute
	}
	start := at.Add(-window)
	end := at.Add(window)

	var results InvestigationResults

	if c.lokiURL != "" {
		needle := errorMessage
		if len(needle) > 50 {
			needle = needle[:50]
		}
		query := NewLogQuery().Contains(needle).Build()
		results.Logs = c.QueryLogs(ctx, query, start, end, 100)
	}
	if c.prometheusURL != "" {
		query := `rate(http_requests_total{status=~"5.."}[5m])`
		results.Metrics = c.QueryMetrics(ctx, query, start, end, "1m")
	}
	if c.tempoURL != "" {
		results.Traces = c.QueryTraces(ctx, FailedTraces(""), start, end, 20)
	}

	return results
}

// Summary renders the gathered evidence as a markdown fragment for prompt
// embedding. Unavailable backends are reported as such.
func (r InvestigationResults) Summary() string {
	var parts []string
	describe := func(label string, result *QueryResult) {
		if result == nil {
			return
		}
		if !result.Success {
			parts = append(parts, fmt.Sprintf("%s: unavailable (%s)", label, result.Error))
			return
		}
		parts = append(parts, fmt.Sprintf("%s (query `%s`):\n%s", label, result.Query, string(result.Data)))
	}
	describe("Logs", r.Logs)
	describe("Metrics", r.Metrics)
	describe("Traces", r.Traces)

	if len(parts) == 0 {
		return ""
	}

	out := ""
	for i, part := range parts {
		if i > 0 {
			out += "\n\n"
		}
		out += part
	}
	return out
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, target interface{}) error {
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(target)
}
