package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	ChatTurnsTotal          metric.Int64Counter
	ChatTurnDurationSeconds metric.Float64Histogram
	UpstreamCallsTotal      metric.Int64Counter
	UpstreamDurationSeconds metric.Float64Histogram
	NewsQuotaExceededTotal  metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments once, using
// the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("ViatorAssistant")
		var err error
		m := &AppMetrics{}

		m.ChatTurnsTotal, err = meter.Int64Counter(
			"chat_turns_total",
			metric.WithDescription("Total number of chat turns completed, by intent"),
			metric.WithUnit("{turn}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create chat_turns_total: %v", err)
		}

		m.ChatTurnDurationSeconds, err = meter.Float64Histogram(
			"chat_turn_duration_seconds",
			metric.WithDescription("Duration of chat turns in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create chat_turn_duration_seconds: %v", err)
		}

		m.UpstreamCallsTotal, err = meter.Int64Counter(
			"upstream_calls_total",
			metric.WithDescription("Total number of upstream provider calls, by provider and outcome"),
			metric.WithUnit("{call}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_calls_total: %v", err)
		}

		m.UpstreamDurationSeconds, err = meter.Float64Histogram(
			"upstream_call_duration_seconds",
			metric.WithDescription("Duration of upstream provider calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_call_duration_seconds: %v", err)
		}

		m.NewsQuotaExceededTotal, err = meter.Int64Counter(
			"news_quota_exceeded_total",
			metric.WithDescription("Total number of news fetches skipped because the daily quota was spent"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create news_quota_exceeded_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global AppMetrics, initializing it on first use.
func Get() *AppMetrics {
	if appMetrics == nil {
		InitAppMetrics()
	}
	return appMetrics
}

// RecordUpstream records one provider call with its outcome and latency.
func RecordUpstream(ctx context.Context, provider, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	)
	m := Get()
	m.UpstreamCallsTotal.Add(ctx, 1, attrs)
	m.UpstreamDurationSeconds.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordChatTurn records one completed orchestrator turn.
func RecordChatTurn(ctx context.Context, intent string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("intent", intent))
	m := Get()
	m.ChatTurnsTotal.Add(ctx, 1, attrs)
	m.ChatTurnDurationSeconds.Record(ctx, elapsed.Seconds(), attrs)
}
