// Package metrics exposes the orchestrator's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/turnos-ai/orchestrator/pkg/models"
)

// Metrics bundles every collector so wiring stays in one place.
type Metrics struct {
	registry *prometheus.Registry

	decisions      *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
	toolCalls      *prometheus.CounterVec
	toolDuration   *prometheus.HistogramVec
	fallbacks      prometheus.Counter
	budgetExceeded prometheus.Counter
}

// New creates and registers all collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchestrator_decisions_total",
			Help: "Decisions served, by route and intent.",
		}, []string{"route", "intent"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orchestrator_stage_duration_seconds",
			Help:    "Wall-clock time per pipeline stage.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2},
		}, []string{"stage"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchestrator_tool_calls_total",
			Help: "Tool invocations, by tool and outcome. outcome is ok or the error kind.",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orchestrator_tool_call_duration_seconds",
			Help:    "Tool call latency including retries.",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 5},
		}, []string{"tool"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orchestrator_slm_fallbacks_total",
			Help: "SLM pipeline crashes recovered by falling back to the legacy route.",
		}),
		budgetExceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orchestrator_budget_exceeded_total",
			Help: "Requests whose total latency exceeded the soft pipeline budget.",
		}),
	}

	m.registry.MustRegister(
		m.decisions, m.stageDuration, m.toolCalls, m.toolDuration,
		m.fallbacks, m.budgetExceeded,
	)
	return m
}

// Registry exposes the backing registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveDecision records a completed decision.
func (m *Metrics) ObserveDecision(resp *models.DecisionResponse) {
	m.decisions.WithLabelValues(resp.Telemetry.Route, string(resp.Telemetry.Intent)).Inc()

	stages := resp.Telemetry.StageMS
	for stage, ms := range map[string]int64{
		"extractor": stages.Extractor,
		"planner":   stages.Planner,
		"policy":    stages.Policy,
		"broker":    stages.Broker,
		"reducer":   stages.Reducer,
		"nlg":       stages.NLG,
	} {
		m.stageDuration.WithLabelValues(stage).Observe(float64(ms) / 1000)
	}

	for _, call := range resp.ToolCalls {
		outcome := "ok"
		if !call.Observation.OK {
			outcome = string(call.Observation.ErrorKind)
		}
		m.toolCalls.WithLabelValues(call.Tool, outcome).Inc()
		m.toolDuration.WithLabelValues(call.Tool).Observe(float64(call.Observation.LatencyMS) / 1000)
	}

	if resp.Telemetry.Fallback {
		m.fallbacks.Inc()
	}
	if resp.Telemetry.BudgetExceeded {
		m.budgetExceeded.Inc()
	}
}
