// Package metrics provides Prometheus metrics for a digest run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dailydigest"

// Recorder owns a registry scoped to one process. A nil Recorder is a no-op.
type Recorder struct {
	registry *prometheus.Registry

	feedFetches *prometheus.CounterVec
	llmAttempts *prometheus.CounterVec
	llmDuration *prometheus.HistogramVec
	batches     *prometheus.CounterVec
	articles    *prometheus.GaugeVec
	lastRunUnix prometheus.Gauge
	runDuration prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		feedFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "feed_fetch_total",
				Help:      "Feed fetches by result (ok, empty, error, timeout)",
			},
			[]string{"result"},
		),
		llmAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_attempts_total",
				Help:      "Chat-completion attempts by backend index and result",
			},
			[]string{"backend", "result"},
		),
		llmDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_attempt_duration_seconds",
				Help:      "Duration of chat-completion attempts in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 120},
			},
			[]string{"backend"},
		),
		batches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batches_total",
				Help:      "LLM batches by stage and result",
			},
			[]string{"stage", "result"},
		),
		articles: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "articles",
				Help:      "Article counts of the last run by pipeline step",
			},
			[]string{"step"},
		),
		lastRunUnix: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
	}
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// FeedFetch records one source outcome.
func (r *Recorder) FeedFetch(result string) {
	if r == nil {
		return
	}
	r.feedFetches.WithLabelValues(result).Inc()
}

// LLMAttempt records one backend attempt.
func (r *Recorder) LLMAttempt(backend int, ok bool, took time.Duration) {
	if r == nil {
		return
	}
	label := fmt.Sprintf("%d", backend)
	r.llmAttempts.WithLabelValues(label, resultLabel(ok)).Inc()
	r.llmDuration.WithLabelValues(label).Observe(took.Seconds())
}

// Batch records one finished batch of a stage.
func (r *Recorder) Batch(stage string, ok bool) {
	if r == nil {
		return
	}
	r.batches.WithLabelValues(stage, resultLabel(ok)).Inc()
}

// Articles sets the article gauge for a pipeline step.
func (r *Recorder) Articles(step string, n int) {
	if r == nil {
		return
	}
	r.articles.WithLabelValues(step).Set(float64(n))
}

// RunFinished stamps the completion time and duration.
func (r *Recorder) RunFinished(at time.Time, took time.Duration) {
	if r == nil {
		return
	}
	r.lastRunUnix.Set(float64(at.Unix()))
	r.runDuration.Set(took.Seconds())
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func resultLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
