package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	metrics "github.com/tigerroll/durable/pkg/durable/core/metrics"
)

// PrometheusRecorder is a Prometheus implementation of metrics.MetricRecorder.
// It registers its collectors on a private registry, exposed through Registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	jobStarted      *prometheus.CounterVec
	jobFinished     *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	replays         *prometheus.CounterVec
	historySize     *prometheus.HistogramVec
	messagesHandled *prometheus.CounterVec
}

// NewPrometheusRecorder creates a recorder whose metric names start with namespace.
func NewPrometheusRecorder(namespace string) *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		jobStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_started_total",
			Help:      "Jobs that started running, by type and kind.",
		}, []string{"job_type", "kind"}),
		jobFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_finished_total",
			Help:      "Jobs that reached a terminal status.",
		}, []string{"job_type", "kind", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Time from job creation to its terminal status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job_type", "kind", "status"}),
		replays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orchestration_replay_total",
			Help:      "Runs of orchestration bodies.",
		}, []string{"job_type"}),
		historySize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "orchestration_history_size",
			Help:      "History length an orchestration was replayed against.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"job_type"}),
		messagesHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_messages_total",
			Help:      "Actor messages by type and outcome.",
		}, []string{"message_type", "outcome"}),
	}

	registry.MustRegister(r.jobStarted)
	registry.MustRegister(r.jobFinished)
	registry.MustRegister(r.jobDuration)
	registry.MustRegister(r.replays)
	registry.MustRegister(r.historySize)
	registry.MustRegister(r.messagesHandled)

	return r
}

// Registry returns the registry holding this recorder's collectors.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *PrometheusRecorder) RecordJobStart(_ context.Context, jobType string, kind model.JobKind) {
	r.jobStarted.WithLabelValues(jobType, kindLabel(kind)).Inc()
}

func (r *PrometheusRecorder) RecordJobEnd(_ context.Context, jobType string, kind model.JobKind, status model.JobStatus, duration time.Duration) {
	k, s := kindLabel(kind), strings.ToLower(string(status))
	r.jobFinished.WithLabelValues(jobType, k, s).Inc()
	r.jobDuration.WithLabelValues(jobType, k, s).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) RecordReplay(_ context.Context, jobType string, historySize int) {
	r.replays.WithLabelValues(jobType).Inc()
	r.historySize.WithLabelValues(jobType).Observe(float64(historySize))
}

func (r *PrometheusRecorder) RecordMessage(_ context.Context, messageType string, dropped bool) {
	outcome := "handled"
	if dropped {
		outcome = "dropped"
	}
	r.messagesHandled.WithLabelValues(messageType, outcome).Inc()
}

func kindLabel(kind model.JobKind) string {
	return strings.ToLower(string(kind))
}

var _ metrics.MetricRecorder = (*PrometheusRecorder)(nil)
