package o11y

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/coyote/internal/config"
)

func TestMetricsQueryBuild(t *testing.T) {
	query := NewMetricsQuery("http_requests_total").
		WithLabel("job", "api").
		WithLabel("code", "500").
		WithRate("5m").
		Sum().
		Build()

	assert.Equal(t, `sum(rate(http_requests_total{code="500", job="api"}[5m]))`, query)
}

func TestMetricsQueryBare(t *testing.T) {
	assert.Equal(t, "up", NewMetricsQuery("up").Build())
}

func TestLogQueryBuild(t *testing.T) {
	query := NewLogQuery().
		Job("checkout").
		Contains("timeout").
		Logfmt().
		Label(`level = "error"`).
		Build()

	assert.Equal(t, `{job="checkout"} |= "timeout" | logfmt | level = "error"`, query)
}

func TestLogQueryDefaultsToAnyJob(t *testing.T) {
	assert.Equal(t, `{job=~".+"} |= "boom"`, NewLogQuery().Contains("boom").Build())
}

func TestTraceQueryBuild(t *testing.T) {
	query := NewTraceQuery().
		Status("error").
		Service("checkout").
		Duration(">", "1s").
		Build()

	assert.Equal(t, `{ status = error && resource.service.name = "checkout" && duration > 1s }`, query)
	assert.Equal(t, "{}", NewTraceQuery().Build())
}

func TestQueryTemplates(t *testing.T) {
	assert.Equal(t, "{ status = error }", FailedTraces(""))
	assert.Equal(t, `{ status = error && resource.service.name = "api" }`, FailedTraces("api"))
	assert.Equal(t, "{ duration > 1s }", SlowTraces("1s", ""))
	assert.Contains(t, ErrorRate("api", "5m"), `status=~"5.."`)
	assert.Contains(t, ErrorRate("api", "5m"), `job="api"`)
	assert.Contains(t, LatencyP99("", "5m"), "histogram_quantile(0.99")
	assert.Equal(t, `{job="api"} |= "panic" | logfmt | level = "error"`, ErrorLogs("api", "panic"))
}

func TestUnconfiguredBackendsReturnExplicitResults(t *testing.T) {
	client := NewClient(config.ObservabilityConfig{}, nil)
	now := time.Now()

	assert.False(t, client.Configured())

	metrics := client.QueryMetrics(context.Background(), "up", now, now, "1m")
	assert.False(t, metrics.Success)
	assert.Contains(t, metrics.Error, "not configured")

	logs := client.QueryLogs(context.Background(), "{}", now, now, 10)
	assert.Contains(t, logs.Error, "not configured")

	traces := client.QueryTraces(context.Background(), "{}", now, now, 10)
	assert.Contains(t, traces.Error, "not configured")
}

func TestQueryMetricsAgainstServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/query_range", r.URL.Path)
		assert.Equal(t, "up", r.URL.Query().Get("query"))
		assert.Equal(t, "1m", r.URL.Query().Get("step"))
		w.Write([]byte(`{"status":"success","data":{"result":[{"metric":{},"values":[[1,"1"]]}]}}`))
	}))
	defer server.Close()

	client := NewClient(config.ObservabilityConfig{PrometheusURL: server.URL}, nil)
	result := client.QueryMetrics(context.Background(), "up", time.Now().Add(-time.Hour), time.Now(), "")

	require.True(t, result.Success)
	assert.Equal(t, sourcePrometheus, result.Source)
	assert.Contains(t, string(result.Data), "values")
}

func TestQueryLogsUsesNanosecondTimestamps(t *testing.T) {
	var gotStart string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/loki/api/v1/query_range", r.URL.Path)
		gotStart = r.URL.Query().Get("start")
		w.Write([]byte(`{"status":"success","data":{"result":[]}}`))
	}))
	defer server.Close()

	client := NewClient(config.ObservabilityConfig{LokiURL: server.URL}, nil)
	start := time.Unix(1700000000, 0)
	result := client.QueryLogs(context.Background(), `{job="api"}`, start, start.Add(time.Minute), 50)

	require.True(t, result.Success)
	assert.Equal(t, "1700000000000000000", gotStart)
}

func TestQueryFailureIsAResultNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(config.ObservabilityConfig{PrometheusURL: server.URL}, nil)
	result := client.QueryMetrics(context.Background(), "up", time.Now(), time.Now(), "1m")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "500")
}

func TestInvestigateErrorFansOutToConfiguredBackends(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/loki/api/v1/query_range", "/api/v1/query_range":
			w.Write([]byte(`{"status":"success","data":{"result":[]}}`))
		case "/api/search":
			w.Write([]byte(`{"traces":[]}`))
		}
	}))
	defer server.Close()

	client := NewClient(config.ObservabilityConfig{
		PrometheusURL: server.URL,
		LokiURL:       server.URL,
		TempoURL:      server.URL,
	}, nil)

	results := client.InvestigateError(context.Background(), "nil pointer dereference", time.Now(), 5*time.Minute)

	require.NotNil(t, results.Logs)
	require.NotNil(t, results.Metrics)
	require.NotNil(t, results.Traces)
	assert.Len(t, paths, 3)
	assert.True(t, results.Logs.Success)
	assert.True(t, results.Traces.Success)
}

func TestInvestigateErrorSkipsUnconfigured(t *testing.T) {
	client := NewClient(config.ObservabilityConfig{}, nil)
	results := client.InvestigateError(context.Background(), "boom", time.Now(), time.Minute)

	assert.Nil(t, results.Logs)
	assert.Nil(t, results.Metrics)
	assert.Nil(t, results.Traces)
	assert.Empty(t, results.Summary())
}

func TestSummaryReportsUnavailableBackends(t *testing.T) {
	results := InvestigationResults{
		Logs: &QueryResult{Query: "{}", Source: sourceLoki, Success: false, Error: "connection refused"},
	}

	summary := results.Summary()
	assert.Contains(t, summary, "unavailable")
	assert.Contains(t, summary, "connection refused")
}
