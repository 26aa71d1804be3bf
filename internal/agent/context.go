package agent

import (
	"upside-down-research.com/oss/praxis/internal/blackboard"
	"upside-down-research.com/oss/praxis/internal/events"
	"upside-down-research.com/oss/praxis/internal/llm"
)

// Verbosity selects which process internals reach the operator.
type Verbosity struct {
	// ShowPrompts echoes every outgoing model prompt.
	ShowPrompts bool

	// ShowLlmResponses echoes every raw model response.
	ShowLlmResponses bool

	// Debug lowers the process log level to debug.
	Debug bool
}

// Options control how a process derived from this agent behaves. A child
// process inherits its parent's options unchanged.
type Options struct {
	Verbosity Verbosity

	// AllowGoalChange permits the planner to switch the process to a
	// different goal mid-run. When false, a goal switch fails the process.
	AllowGoalChange bool

	// Test swaps the model facade for the no-network dummy.
	Test bool

	// ContinueOnActionFailure keeps the process RUNNING after a failed
	// action instead of transitioning to FAILED.
	ContinueOnActionFailure bool

	// OutputDirectory receives run artifacts on completion, when set.
	OutputDirectory string

	// Identities carries caller-supplied identity material for tools.
	Identities map[string]string
}

// HistoryView is the read side of a process's execution history, enough
// for has-run conditions.
type HistoryView interface {
	HasRunSuccessfully(actionName string) bool
}

// ProcessContext is what an executing action or condition evaluator sees
// of its process.
type ProcessContext struct {
	ProcessID string
	AgentName string

	Blackboard *blackboard.Blackboard
	Options    Options
	Llm        llm.Operations
	Listener   events.EventListener
	History    HistoryView

	// ToolGroups are the agent-level groups plus the executing action's
	// groups; Interaction folds them in ahead of per-call groups.
	ToolGroups []llm.ToolGroup

	// UserResponse holds the reply that resumed the process from
	// WAITING, if any.
	UserResponse string
}

// ID identifies the process for model-call attribution.
func (pc *ProcessContext) ID() string { return pc.ProcessID }

// Identity returns the caller-supplied identity value under name, if one
// was bound at process creation.
func (pc *ProcessContext) Identity(name string) (string, bool) {
	v, ok := pc.Options.Identities[name]
	return v, ok
}

// Emit publishes an event on the platform stream, when a listener is
// wired.
func (pc *ProcessContext) Emit(e events.Event) {
	if pc.Listener != nil {
		pc.Listener.Emit(e)
	}
}

// Interaction builds the default model interaction for this process:
// the agent's and executing action's tool groups, then the per-call
// groups. The facade deduplicates by tool name, first occurrence wins.
func (pc *ProcessContext) Interaction(system string, groups ...llm.ToolGroup) llm.Interaction {
	tools := make([]llm.ToolGroup, 0, len(pc.ToolGroups)+len(groups))
	tools = append(tools, pc.ToolGroups...)
	tools = append(tools, groups...)
	return llm.Interaction{
		SystemPrompt: system,
		Tools:        tools,
	}
}
