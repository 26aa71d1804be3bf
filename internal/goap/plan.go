package goap

import (
	"fmt"
	"strings"
)

// Plan is an ordered action sequence connecting the current world state to
// a goal. An empty plan means the goal already holds.
type Plan struct {
	Actions []Action
	Goal    Goal
}

// Cost is the sum of all action costs.
func (p *Plan) Cost() float64 {
	total := 0.0
	for _, a := range p.Actions {
		total += a.Cost
	}
	return total
}

// ActionsValue is the sum of all action values.
func (p *Plan) ActionsValue() float64 {
	total := 0.0
	for _, a := range p.Actions {
		total += a.Value
	}
	return total
}

// NetValue is the goal value plus the actions' value minus the plan cost.
func (p *Plan) NetValue() float64 {
	return p.Goal.Value + p.ActionsValue() - p.Cost()
}

// IsComplete reports whether the plan is empty, i.e. the goal already holds.
func (p *Plan) IsComplete() bool {
	return len(p.Actions) == 0
}

// ActionNames returns the plan's action names in execution order.
func (p *Plan) ActionNames() []string {
	names := make([]string, len(p.Actions))
	for i, a := range p.Actions {
		names[i] = a.Name
	}
	return names
}

func (p *Plan) String() string {
	if p.IsComplete() {
		return fmt.Sprintf("Plan[%s: complete]", p.Goal.Name)
	}
	return fmt.Sprintf("Plan[%s: %s, cost=%.2f, net=%.2f]",
		p.Goal.Name, strings.Join(p.ActionNames(), " -> "), p.Cost(), p.NetValue())
}
