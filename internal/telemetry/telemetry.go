package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Telemetry records router, pipeline and adapter metrics. All metrics are
// registered on the default prometheus registry and served by /metrics.
type Telemetry struct {
	routerDecisions  *prometheus.CounterVec
	pipelineRuns     *prometheus.CounterVec
	pipelineDuration *prometheus.HistogramVec
	stageDuration    *prometheus.HistogramVec
	stageFailures    *prometheus.CounterVec
	adapterErrors    *prometheus.CounterVec
}

func New() *Telemetry {
	return &Telemetry{
		routerDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "answerhub_router_decisions_total",
			Help: "Routing decisions by mode.",
		}, []string{"mode"}),
		pipelineRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "answerhub_pipeline_runs_total",
			Help: "Pipeline executions by pipeline and outcome.",
		}, []string{"pipeline", "outcome"}),
		pipelineDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "answerhub_pipeline_duration_seconds",
			Help:    "End to end pipeline latency.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"pipeline"}),
		stageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "answerhub_stage_duration_seconds",
			Help:    "Per stage latency.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"pipeline", "stage"}),
		stageFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "answerhub_stage_failures_total",
			Help: "Stage errors by pipeline and stage.",
		}, []string{"pipeline", "stage"}),
		adapterErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "answerhub_adapter_errors_total",
			Help: "Degraded capability adapter calls.",
		}, []string{"adapter"}),
	}
}

func (t *Telemetry) RouterDecision(mode string) {
	if t == nil {
		return
	}
	t.routerDecisions.WithLabelValues(mode).Inc()
}

func (t *Telemetry) PipelineRun(pipeline, outcome string, d time.Duration) {
	if t == nil {
		return
	}
	t.pipelineRuns.WithLabelValues(pipeline, outcome).Inc()
	t.pipelineDuration.WithLabelValues(pipeline).Observe(d.Seconds())
}

func (t *Telemetry) Stage(pipeline, stage string, d time.Duration) {
	if t == nil {
		return
	}
	t.stageDuration.WithLabelValues(pipeline, stage).Observe(d.Seconds())
}

func (t *Telemetry) StageFailure(pipeline, stage string) {
	if t == nil {
		return
	}
	t.stageFailures.WithLabelValues(pipeline, stage).Inc()
}

func (t *Telemetry) AdapterError(adapter string) {
	if t == nil {
		return
	}
	t.adapterErrors.WithLabelValues(adapter).Inc()
}
