// Package agent defines what an agent is: a named library of executable
// actions, evaluable conditions, goals, domain types, and tool groups.
// The process runtime plans over this definition; nothing here executes
// on its own.
package agent

import (
	"context"
	"fmt"

	"upside-down-research.com/oss/praxis/internal/blackboard"
	"upside-down-research.com/oss/praxis/internal/goap"
	"upside-down-research.com/oss/praxis/internal/llm"
)

// ActionStatus is the outcome an action execution reports back to the
// process loop.
type ActionStatus string

const (
	ActionSucceeded ActionStatus = "SUCCEEDED"
	ActionFailed    ActionStatus = "FAILED"
	ActionWaiting   ActionStatus = "WAITING"
	ActionPaused    ActionStatus = "PAUSED"
)

// Action is an executable step: planner-facing preconditions, effects,
// cost and value, plus the code that runs when the planner picks it.
type Action struct {
	Name          string `validate:"required"`
	Description   string
	Preconditions goap.WorldState
	Effects       goap.WorldState
	Cost          float64 `validate:"gte=0"`
	Value         float64

	// CanRerun permits the action to appear more than once in a plan.
	// Single-shot actions are fenced with a has-run condition when the
	// planning system is built.
	CanRerun bool

	// ToolGroups are offered to the model for LLM-backed executions of
	// this action, in addition to the agent-level groups.
	ToolGroups []llm.ToolGroup

	// Execute runs the action against the process context.
	Execute func(ctx context.Context, pc *ProcessContext) (ActionStatus, error)
}

// Planning returns the action's planner-facing view.
func (a Action) Planning() goap.Action {
	return goap.Action{
		Name:          a.Name,
		Preconditions: a.Preconditions.Clone(),
		Effects:       a.Effects.Clone(),
		Cost:          a.Cost,
		Value:         a.Value,
	}
}

// Condition is a named world-state predicate backed by arbitrary code.
// Expensive conditions are only evaluated when the planner explicitly
// asks; a nil Eval declares the name so condition overrides default to
// false instead of unknown.
type Condition struct {
	Name      string `validate:"required"`
	Expensive bool
	Eval      func(pc *ProcessContext) bool
}

// Agent is a complete agent definition.
type Agent struct {
	Name        string `validate:"required"`
	Description string
	Actions     []Action
	Conditions  []Condition
	Goals       []goap.Goal `validate:"min=1"`
	DomainTypes *blackboard.DomainTypes
	ToolGroups  []llm.ToolGroup
}

// Action returns the unique action of that name.
func (a *Agent) Action(name string) (*Action, error) {
	var found *Action
	for i := range a.Actions {
		if a.Actions[i].Name != name {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("agent %s: action name %q is not unique", a.Name, name)
		}
		found = &a.Actions[i]
	}
	if found == nil {
		return nil, fmt.Errorf("agent %s: no action named %q", a.Name, name)
	}
	return found, nil
}

// Condition returns the named condition, if declared.
func (a *Agent) Condition(name string) (*Condition, bool) {
	for i := range a.Conditions {
		if a.Conditions[i].Name == name {
			return &a.Conditions[i], true
		}
	}
	return nil, false
}

// HasRunCondition names the fence condition for a single-shot action.
func HasRunCondition(actionName string) string {
	return "hasRun_" + actionName
}

// PlanningSystem builds the planner's view of the agent. Single-shot
// actions gain a has-run fence: they require their fence condition FALSE
// and set it TRUE, so a second occurrence can never be planned.
func (a *Agent) PlanningSystem() *goap.PlanningSystem {
	actions := make([]goap.Action, 0, len(a.Actions))
	for _, act := range a.Actions {
		pa := act.Planning()
		if !act.CanRerun {
			fence := HasRunCondition(act.Name)
			pa.Preconditions[fence] = goap.False
			pa.Effects[fence] = goap.True
		}
		actions = append(actions, pa)
	}
	goals := make([]goap.Goal, len(a.Goals))
	copy(goals, a.Goals)
	return goap.NewPlanningSystem(actions, goals)
}
