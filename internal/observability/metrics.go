package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vibetweet_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// TweetsImported counts ingested tweet candidates by result (imported, skipped).
	TweetsImported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibetweet_tweets_imported_total",
		Help: "Tweet import candidates by result",
	}, []string{"result"})

	// StyleAnalyses counts style profile computations by trigger (event, manual, cli).
	StyleAnalyses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibetweet_style_analyses_total",
		Help: "Style profile computations by trigger",
	}, []string{"trigger"})

	// LLMRequestLatency records provider call latency by provider and outcome.
	LLMRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vibetweet_llm_request_latency_seconds",
		Help:    "LLM provider call latency in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"provider", "outcome"})

	// SuggestionsGenerated counts suggestions returned to callers by provider.
	SuggestionsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibetweet_suggestions_generated_total",
		Help: "Generated tweet suggestions returned to callers",
	}, []string{"provider"})

	// TrendFetches counts trend source fetches by source and outcome.
	TrendFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibetweet_trend_fetches_total",
		Help: "Trend source fetches by source and outcome",
	}, []string{"source", "outcome"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// ObserveLLM records one provider call.
func ObserveLLM(provider string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	LLMRequestLatency.WithLabelValues(provider, outcome).Observe(time.Since(start).Seconds())
}
