// Package o11y turns the platform event stream into metrics: Prometheus
// collectors (optionally pushed to a gateway) and InfluxDB points.
package o11y

import (
	"context"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxapi "github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/praxis/internal/events"
)

// Metrics is an event listener maintaining Prometheus collectors for the
// platform's behavior.
type Metrics struct {
	registry *prometheus.Registry
	pusher   *push.Pusher

	processesCreated prometheus.Counter
	processesKilled  prometheus.Counter
	goalsAchieved    *prometheus.CounterVec
	plansFormulated  prometheus.Counter
	planCost         prometheus.Histogram
	llmCalls         *prometheus.CounterVec
	llmDuration      *prometheus.HistogramVec
	llmTokens        *prometheus.CounterVec
	toolCalls        *prometheus.CounterVec
	ragRequests      prometheus.Counter
	ragDuration      prometheus.Histogram
}

// NewMetrics creates and registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		processesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "praxis_processes_created_total",
			Help: "Agent processes created.",
		}),
		processesKilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "praxis_processes_killed_total",
			Help: "Agent processes killed before finishing.",
		}),
		goalsAchieved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "praxis_goals_achieved_total",
			Help: "Goals achieved, by goal name.",
		}, []string{"goal"}),
		plansFormulated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "praxis_plans_formulated_total",
			Help: "Plans the planner committed to.",
		}),
		planCost: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "praxis_plan_cost",
			Help:    "Cost of committed plans.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "praxis_llm_calls_total",
			Help: "Model calls, by model and outcome.",
		}, []string{"model", "outcome"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "praxis_llm_duration_seconds",
			Help:    "Model call wall time.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"model"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "praxis_llm_tokens_total",
			Help: "Token throughput, by model and direction.",
		}, []string{"model", "direction"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "praxis_tool_calls_total",
			Help: "Tool invocations, by tool and outcome.",
		}, []string{"tool", "outcome"}),
		ragRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "praxis_rag_requests_total",
			Help: "Retrieval enhancement requests.",
		}),
		ragDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "praxis_rag_pipeline_duration_seconds",
			Help:    "Enhancement pipeline wall time.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
	m.registry.MustRegister(
		m.processesCreated, m.processesKilled, m.goalsAchieved,
		m.plansFormulated, m.planCost,
		m.llmCalls, m.llmDuration, m.llmTokens,
		m.toolCalls, m.ragRequests, m.ragDuration,
	)
	return m
}

// WithPushGateway pushes the registry to a Prometheus pushgateway after
// every event batch.
func (m *Metrics) WithPushGateway(url, job string) *Metrics {
	m.pusher = push.New(url, job).Gatherer(m.registry)
	return m
}

// Registry exposes the collectors for an HTTP scrape handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Emit(e events.Event) {
	switch ev := e.(type) {
	case events.AgentProcessCreationEvent:
		m.processesCreated.Inc()
	case events.AgentProcessKillEvent:
		m.processesKilled.Inc()
	case events.GoalAchievedEvent:
		m.goalsAchieved.WithLabelValues(ev.GoalName).Inc()
	case events.PlanFormulatedEvent:
		m.plansFormulated.Inc()
		m.planCost.Observe(ev.PlanCost)
	case events.LlmResponseEvent:
		outcome := "ok"
		if ev.Err != nil {
			outcome = "error"
		}
		m.llmCalls.WithLabelValues(ev.Model, outcome).Inc()
		m.llmDuration.WithLabelValues(ev.Model).Observe(ev.Duration.Seconds())
		m.llmTokens.WithLabelValues(ev.Model, "input").Add(float64(ev.InputTokens))
		m.llmTokens.WithLabelValues(ev.Model, "output").Add(float64(ev.OutputTokens))
	case events.ToolInvocationEvent:
		outcome := "ok"
		if ev.Err != nil {
			outcome = "error"
		}
		m.toolCalls.WithLabelValues(ev.ToolName, outcome).Inc()
	case events.RagRequestReceivedEvent:
		m.ragRequests.Inc()
	case events.RagResponseEvent:
		m.ragDuration.Observe(ev.Duration.Seconds())
	}
	m.maybePush()
}

func (m *Metrics) maybePush() {
	if m.pusher == nil {
		return
	}
	go func() {
		if err := m.pusher.Push(); err != nil {
			log.Warn("pushgateway push failed", "err", err)
		}
	}()
}

// InfluxRecorder writes one point per platform event to an InfluxDB
// bucket, for offline analysis of runs.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI influxapi.WriteAPIBlocking
}

// NewInfluxRecorder connects to InfluxDB with the given credentials.
func NewInfluxRecorder(url, token, org, bucket string) *InfluxRecorder {
	client := influxdb2.NewClient(url, token)
	return &InfluxRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
	}
}

// Close releases the underlying connection.
func (r *InfluxRecorder) Close() { r.client.Close() }

func (r *InfluxRecorder) Emit(e events.Event) {
	tags := map[string]string{"process": e.ProcessID()}
	fields := map[string]any{"count": 1}
	var measurement string

	switch ev := e.(type) {
	case events.PlanFormulatedEvent:
		measurement = "plan_formulated"
		tags["goal"] = ev.GoalName
		fields["cost"] = ev.PlanCost
		fields["steps"] = len(ev.ActionNames)
	case events.GoalAchievedEvent:
		measurement = "goal_achieved"
		tags["goal"] = ev.GoalName
	case events.LlmResponseEvent:
		measurement = "llm_call"
		tags["model"] = ev.Model
		fields["duration_ms"] = ev.Duration.Milliseconds()
		fields["input_tokens"] = ev.InputTokens
		fields["output_tokens"] = ev.OutputTokens
	case events.ToolInvocationEvent:
		measurement = "tool_call"
		tags["tool"] = ev.ToolName
		fields["duration_ms"] = ev.Duration.Milliseconds()
	case events.AgentProcessKillEvent:
		measurement = "process_killed"
	case events.RagResponseEvent:
		measurement = "rag_response"
		fields["duration_ms"] = ev.Duration.Milliseconds()
		fields["matches"] = ev.MatchCount
	default:
		return
	}

	point := write.NewPoint(measurement, tags, fields, e.Timestamp())
	if err := r.writeAPI.WritePoint(context.Background(), point); err != nil {
		log.Warn("influx write failed", "measurement", measurement, "err", err)
	}
}

var _ events.EventListener = (*Metrics)(nil)
var _ events.EventListener = (*InfluxRecorder)(nil)
