// Package metrics registers prometheus collectors for the HTTP surface and
// the search pipeline.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(registerer prometheus.Registerer) *HTTPMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	registerer.MustRegister(m.requests, m.duration)
	return m
}

// GinMiddleware records request count and latency per route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// PipelineMetrics captures search pipeline health signals.
type PipelineMetrics struct {
	stageTransitions *prometheus.CounterVec
	runsCompleted    prometheus.Counter
	runsFailed       *prometheus.CounterVec
}

func NewPipelineMetrics(registerer prometheus.Registerer) *PipelineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &PipelineMetrics{
		stageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "search_pipeline_stage_transitions_total",
			Help: "Search pipeline stage transitions by target status.",
		}, []string{"status"}),
		runsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "search_pipeline_runs_completed_total",
			Help: "Search pipeline runs that reached completed.",
		}),
		runsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "search_pipeline_runs_failed_total",
			Help: "Search pipeline runs that ended in error, by stage.",
		}, []string{"stage"}),
	}
	registerer.MustRegister(m.stageTransitions, m.runsCompleted, m.runsFailed)
	return m
}

func (m *PipelineMetrics) ObserveTransition(status string) {
	if m == nil {
		return
	}
	m.stageTransitions.WithLabelValues(status).Inc()
}

func (m *PipelineMetrics) ObserveCompleted() {
	if m == nil {
		return
	}
	m.runsCompleted.Inc()
}

func (m *PipelineMetrics) ObserveFailed(stage string) {
	if m == nil {
		return
	}
	m.runsFailed.WithLabelValues(stage).Inc()
}
