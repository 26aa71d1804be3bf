package o11y

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upside-down-research.com/oss/praxis/internal/events"
)

func TestMetricsCountEvents(t *testing.T) {
	m := NewMetrics()

	m.Emit(events.AgentProcessCreationEvent{Base: events.NewBase("p")})
	m.Emit(events.AgentProcessCreationEvent{Base: events.NewBase("q")})
	m.Emit(events.AgentProcessKillEvent{Base: events.NewBase("q")})
	m.Emit(events.GoalAchievedEvent{Base: events.NewBase("p"), GoalName: "report"})
	m.Emit(events.PlanFormulatedEvent{Base: events.NewBase("p"), GoalName: "report", PlanCost: 3.5})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.processesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.processesKilled))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.goalsAchieved.WithLabelValues("report")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.plansFormulated))
}

func TestMetricsLlmAndToolOutcomes(t *testing.T) {
	m := NewMetrics()

	m.Emit(events.LlmResponseEvent{
		Base:         events.NewBase("p"),
		Model:        "gpt-4o",
		Duration:     120 * time.Millisecond,
		InputTokens:  100,
		OutputTokens: 40,
	})
	m.Emit(events.LlmResponseEvent{
		Base:  events.NewBase("p"),
		Model: "gpt-4o",
		Err:   errors.New("timeout"),
	})
	m.Emit(events.ToolInvocationEvent{Base: events.NewBase("p"), ToolName: "search"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmCalls.WithLabelValues("gpt-4o", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmCalls.WithLabelValues("gpt-4o", "error")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.llmTokens.WithLabelValues("gpt-4o", "input")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("search", "ok")))
}

func TestMetricsRegistryGathers(t *testing.T) {
	m := NewMetrics()
	m.Emit(events.RagRequestReceivedEvent{Base: events.NewBase("p")})

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["praxis_rag_requests_total"])
	assert.True(t, names["praxis_processes_created_total"])
}
