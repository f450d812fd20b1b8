// Package o11y queries the observability backends (Prometheus, Loki, Tempo)
// used to enrich an investigation with evidence from around the failure.
// Backends are optional: an unconfigured backend yields an explicit
// not-configured result rather than an error.
package o11y

import (
	"fmt"
	"sort"
	"strings"
)

// MetricsQuery builds a PromQL expression.
type MetricsQuery struct {
	metric      string
	labels      map[string]string
	rateWindow  string
	aggregation string
}

// NewMetricsQuery starts a builder over the given base metric.
func NewMetricsQuery(metric string) *MetricsQuery {
	return &MetricsQuery{metric: metric, labels: map[string]string{}}
}

// WithLabel adds an exact-match label filter.
func (q *MetricsQuery) WithLabel(key, value string) *MetricsQuery {
	q.labels[key] = value
	return q
}

// WithRate wraps the selector in rate() over the given window.
func (q *MetricsQuery) WithRate(window string) *MetricsQuery {
	q.rateWindow = window
	return q
}

// Sum applies a sum aggregation around the expression.
func (q *MetricsQuery) Sum() *MetricsQuery {
	q.aggregation = "sum"
	return q
}

// Avg applies an avg aggregation around the expression.
func (q *MetricsQuery) Avg() *MetricsQuery {
	q.aggregation = "avg"
	return q
}

// Build renders the PromQL string. Labels render in sorted key order so the
// output is deterministic.
func (q *MetricsQuery) Build() string {
	query := q.metric
	if len(q.labels) > 0 {
		keys := make([]string, 0, len(q.labels))
		for key := range q.labels {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%q", key, q.labels[key]))
		}
		query += "{" + strings.Join(parts, ", ") + "}"
	}
	if q.rateWindow != "" {
		query = fmt.Sprintf("rate(%s[%s])", query, q.rateWindow)
	}
	if q.aggregation != "" {
		query = fmt.Sprintf("%s(%s)", q.aggregation, query)
	}
	return query
}

// LogQuery builds a LogQL expression.
type LogQuery struct {
	stream      map[string]string
	lineFilters []string
	stages      []string
}

// NewLogQuery starts an empty builder.
func NewLogQuery() *LogQuery {
	return &LogQuery{stream: map[string]string{}}
}

// Job filters the stream selector by job name.
func (q *LogQuery) Job(job string) *LogQuery {
	q.stream["job"] = job
	return q
}

// Stream adds an arbitrary stream selector label.
func (q *LogQuery) Stream(key, value string) *LogQuery {
	q.stream[key] = value
	return q
}

// Contains adds a line-contains filter.
func (q *LogQuery) Contains(text string) *LogQuery {
	q.lineFilters = append(q.lineFilters, text)
	return q
}

// JSON adds a json parser stage.
func (q *LogQuery) JSON() *LogQuery {
	q.stages = append(q.stages, "json")
	return q
}

// Logfmt adds a logfmt parser stage.
func (q *LogQuery) Logfmt() *LogQuery {
	q.stages = append(q.stages, "logfmt")
	return q
}

// Label adds a label filter stage after parsing.
func (q *LogQuery) Label(expr string) *LogQuery {
	q.stages = append(q.stages, expr)
	return q
}

// Build renders the LogQL string. An empty stream selector matches any job.
func (q *LogQuery) Build() string {
	var b strings.Builder

	if len(q.stream) == 0 {
		b.WriteString(`{job=~".+"}`)
	} else {
		keys := make([]string, 0, len(q.stream))
		for key := range q.stream {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%q", key, q.stream[key]))
		}
		b.WriteString("{" + strings.Join(parts, ", ") + "}")
	}

	for _, filter := range q.lineFilters {
		fmt.Fprintf(&b, " |= %q", filter)
	}
	for _, stage := range q.stages {
		fmt.Fprintf(&b, " | %s", stage)
	}
	return b.String()
}

// TraceQuery builds a Tempo TraceQL expression.
type TraceQuery struct {
	conditions []string
}

// NewTraceQuery starts an empty builder.
func NewTraceQuery() *TraceQuery {
	return &TraceQuery{}
}

// Status filters by span status (ok, error, unset).
func (q *TraceQuery) Status(status string) *TraceQuery {
	q.conditions = append(q.conditions, "status = "+status)
	return q
}

// Service filters by resource service name.
func (q *TraceQuery) Service(name string) *TraceQuery {
	q.conditions = append(q.conditions, fmt.Sprintf("resource.service.name = %q", name))
	return q
}

// Operation filters by span name.
func (q *TraceQuery) Operation(name string) *TraceQuery {
	q.conditions = append(q.conditions, fmt.Sprintf("name = %q", name))
	return q
}

// Duration filters by span duration, e.g. Duration(">", "1s").
func (q *TraceQuery) Duration(op, value string) *TraceQuery {
	q.conditions = append(q.conditions, fmt.Sprintf("duration %s %s", op, value))
	return q
}

// Attribute filters by a span attribute value.
func (q *TraceQuery) Attribute(key, value string) *TraceQuery {
	q.conditions = append(q.conditions, fmt.Sprintf("span.%s = %q", key, value))
	return q
}

// Build renders the TraceQL string.
func (q *TraceQuery) Build() string {
	if len(q.conditions) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(q.conditions, " && ") + " }"
}

// ErrorRate returns a PromQL expression for the HTTP 5xx error ratio.
func ErrorRate(service, window string) string {
	errSelector := `status=~"5.."`
	allSelector := ""
	if service != "" {
		errSelector += fmt.Sprintf(", job=%q", service)
		allSelector = fmt.Sprintf("job=%q", service)
	}
	return fmt.Sprintf(
		"sum(rate(http_requests_total{%s}[%s])) / sum(rate(http_requests_total{%s}[%s]))",
		errSelector, window, allSelector, window,
	)
}

// LatencyP99 returns a PromQL expression for the P99 request latency.
func LatencyP99(service, window string) string {
	labels := ""
	if service != "" {
		labels = fmt.Sprintf("job=%q", service)
	}
	return fmt.Sprintf(
		"histogram_quantile(0.99, sum(rate(http_request_duration_seconds_bucket{%s}[%s])) by (le))",
		labels, window,
	)
}

// ErrorLogs returns a LogQL expression matching error-level log lines.
func ErrorLogs(service, errorText string) string {
	q := NewLogQuery()
	if service != "" {
		q.Job(service)
	}
	return q.Contains(errorText).Logfmt().Label(`level = "error"`).Build()
}

// FailedTraces returns a TraceQL expression matching error-status traces.
func FailedTraces(service string) string {
	q := NewTraceQuery().Status("error")
	if service != "" {
		q.Service(service)
	}
	return q.Build()
}

// SlowTraces returns a TraceQL expression matching traces slower than the
// threshold.
func SlowTraces(threshold, service string) string {
	q := NewTraceQuery().Duration(">", threshold)
	if service != "" {
		q.Service(service)
	}
	return q.Build()
}
