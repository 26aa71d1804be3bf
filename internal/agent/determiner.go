package agent

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/praxis/internal/blackboard"
	"upside-down-research.com/oss/praxis/internal/goap"
)

// AllBinding is the synthetic variable name whose binding condition is
// always satisfied.
const AllBinding = "all"

const hasRunPrefix = "hasRun_"

// Determiner translates blackboard contents into the world state the
// planner searches over. Condition names are interpreted in a fixed
// order:
//
//  1. "variable:Type" binding conditions resolve against the blackboard.
//  2. "hasRun_<action>" conditions resolve against execution history.
//  3. Named agent conditions run their evaluator. Expensive evaluators
//     only run when the planner asks for a single condition explicitly.
//  4. Condition overrides set on the blackboard; a declared but never
//     set condition reads as false.
//  5. Anything else is unknown.
type Determiner struct {
	agent   *Agent
	pc      *ProcessContext
	history HistoryView
}

// NewDeterminer creates a determiner over a process context. The history
// view usually is the process itself.
func NewDeterminer(a *Agent, pc *ProcessContext, history HistoryView) *Determiner {
	return &Determiner{agent: a, pc: pc, history: history}
}

// DetermineWorldState evaluates every condition the agent's planning
// system knows about.
func (d *Determiner) DetermineWorldState(ctx context.Context) goap.WorldState {
	state := goap.NewWorldState()
	for _, name := range d.agent.PlanningSystem().KnownConditions() {
		state[name] = d.determine(name, false)
	}
	log.Debug("world state determined", "agent", d.agent.Name, "conditions", len(state))
	return state
}

// DetermineCondition evaluates one condition on the planner's explicit
// request, including expensive ones.
func (d *Determiner) DetermineCondition(ctx context.Context, name string) goap.ConditionDetermination {
	return d.determine(name, true)
}

func (d *Determiner) determine(name string, explicit bool) goap.ConditionDetermination {
	if variable, typeName, ok := splitBinding(name); ok {
		return d.determineBinding(variable, typeName)
	}

	if actionName, ok := strings.CutPrefix(name, hasRunPrefix); ok {
		if d.history == nil {
			return goap.False
		}
		return goap.Determined(d.history.HasRunSuccessfully(actionName))
	}

	if cond, ok := d.agent.Condition(name); ok && cond.Eval != nil {
		if cond.Expensive && !explicit {
			return goap.Unknown
		}
		return goap.Determined(cond.Eval(d.pc))
	}

	if v, ok := d.pc.Blackboard.GetCondition(name); ok {
		return goap.Determined(v)
	}
	if _, declared := d.agent.Condition(name); declared {
		return goap.False
	}
	return goap.Unknown
}

func (d *Determiner) determineBinding(variable, typeName string) goap.ConditionDetermination {
	if variable == AllBinding {
		return goap.True
	}
	return goap.Determined(d.pc.Blackboard.GetValue(variable, typeName, d.agent.DomainTypes) != nil)
}

// splitBinding recognizes "variable:Type" condition names.
func splitBinding(name string) (variable, typeName string, ok bool) {
	i := strings.IndexByte(name, ':')
	if i <= 0 || i == len(name)-1 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}

var _ goap.WorldStateDeterminer = (*Determiner)(nil)

// Blackboard binding helper so callers can phrase binding conditions
// consistently.
func BindingCondition(variable, typeName string) string {
	return variable + ":" + blackboard.SimpleName(typeName)
}
