// Package events defines the platform event stream. Every significant
// transition of an agent process, the planner, the model facade, and the
// retrieval pipeline is published to an EventListener so observers can
// record, log, or export it.
package events

import "time"

// Event is the common shape of everything emitted on the platform stream.
// ProcessID identifies the originating agent process; platform-level
// events that precede any process carry an empty id.
type Event interface {
	ProcessID() string
	Timestamp() time.Time
}

// EventListener receives platform events. Implementations must tolerate
// concurrent Emit calls.
type EventListener interface {
	Emit(e Event)
}

// Base carries the fields every event shares. Embed it and construct with
// NewBase.
type Base struct {
	Process string
	At      time.Time
}

// NewBase stamps an event base with the current time.
func NewBase(processID string) Base {
	return Base{Process: processID, At: time.Now()}
}

func (b Base) ProcessID() string    { return b.Process }
func (b Base) Timestamp() time.Time { return b.At }

// AgentDeploymentEvent marks an agent definition becoming available on
// the platform.
type AgentDeploymentEvent struct {
	Base
	AgentName string
}

// AgentProcessCreationEvent marks a new process instance of an agent.
type AgentProcessCreationEvent struct {
	Base
	AgentName   string
	ProcessName string
}

// PlanFormulatedEvent carries the plan a process decided to pursue on a
// tick.
type PlanFormulatedEvent struct {
	Base
	GoalName    string
	ActionNames []string
	PlanCost    float64
}

// GoalAchievedEvent marks a process completing its goal.
type GoalAchievedEvent struct {
	Base
	GoalName string
}

// LlmRequestEvent is emitted before every model invocation.
type LlmRequestEvent struct {
	Base
	Model     string
	Operation string
	Prompt    string
	ToolCount int
}

// LlmResponseEvent is emitted after every model invocation, carrying the
// wall-clock duration of the call.
type LlmResponseEvent struct {
	Base
	Model        string
	Operation    string
	Content      string
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
	Err          error
}

// ToolInvocationEvent records one tool callback execution requested by
// the model on behalf of a process.
type ToolInvocationEvent struct {
	Base
	ToolName string
	Input    string
	Output   string
	Duration time.Duration
	Err      error
}

// AgentProcessKillEvent marks an externally requested termination.
// Exactly one is emitted per killed process.
type AgentProcessKillEvent struct {
	Base
	ProcessName string
}

// RagRequestReceivedEvent marks a retrieval enhancement request entering
// the pipeline.
type RagRequestReceivedEvent struct {
	Base
	Query      string
	MatchCount int
}

// RagResponseEvent marks the pipeline returning its enhanced result set.
type RagResponseEvent struct {
	Base
	Query        string
	MatchCount   int
	Duration     time.Duration
	Enhancements []string
}

// EnhancementStartingEvent marks one pipeline stage beginning work.
type EnhancementStartingEvent struct {
	Base
	Enhancer string
}

// EnhancementCompletedEvent marks one pipeline stage finishing, whether
// it applied, skipped, or failed.
type EnhancementCompletedEvent struct {
	Base
	Enhancer string
	Applied  bool
	Duration time.Duration
	Err      error
}
