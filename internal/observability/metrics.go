package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels
const (
	OutcomeSuccess   = "success"
	OutcomeTransient = "transient"
	OutcomeFatal     = "fatal"
	OutcomeConfig    = "config"
	OutcomeCancelled = "cancelled"
	OutcomeFailure   = "failure"
)

var (
	// llmAttemptsTotal counts individual LLM calls by outcome
	llmAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_tailor_llm_attempts_total",
		Help: "LLM completion attempts by outcome",
	}, []string{"operation", "outcome"})

	// llmCallDuration tracks the latency of a single LLM call
	llmCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resume_tailor_llm_call_duration_seconds",
		Help:    "LLM call duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 250ms to ~32s
	}, []string{"operation"})

	// regenerationItemsTotal counts regenerated items by final outcome
	regenerationItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_tailor_regeneration_items_total",
		Help: "Regeneration items by final outcome",
	}, []string{"item_type", "outcome"})

	// regenerationBatchSize tracks unique keys per regeneration batch
	regenerationBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "resume_tailor_regeneration_batch_size",
		Help:    "Unique items per regeneration batch",
		Buckets: []float64{1, 2, 5, 10, 20, 50},
	})

	// diffEntriesTotal counts diff entries by risk tier
	diffEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_tailor_diff_entries_total",
		Help: "Classified diff entries by risk tier",
	}, []string{"risk"})
)

// RecordLLMAttempt records one LLM call and its latency
func RecordLLMAttempt(operation, outcome string, elapsed time.Duration) {
	llmAttemptsTotal.WithLabelValues(operation, outcome).Inc()
	llmCallDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordRegenerationItem records the final outcome of one regenerated item
func RecordRegenerationItem(itemType, outcome string) {
	regenerationItemsTotal.WithLabelValues(itemType, outcome).Inc()
}

// RecordRegenerationBatch records the number of unique items in a batch
func RecordRegenerationBatch(size int) {
	regenerationBatchSize.Observe(float64(size))
}

// RecordDiffEntry counts one classified diff entry
func RecordDiffEntry(risk string) {
	diffEntriesTotal.WithLabelValues(risk).Inc()
}
