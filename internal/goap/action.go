package goap

import "fmt"

// Action is the planning model of a single agent step: preconditions that
// must hold for the action to be applicable, effects it has on the world,
// a cost the planner minimizes, and a value that contributes to a plan's
// net worth. Execution behavior lives outside the planning model; the
// planner only reasons about names, conditions, and numbers.
type Action struct {
	// Name identifies the action. Unique within a planning system.
	Name string

	// Preconditions must all strictly hold for the action to apply.
	Preconditions WorldState

	// Effects are overlaid on the world state when the action is applied.
	Effects WorldState

	// Cost is the planner's minimization target. Must be >= 0.
	Cost float64

	// Value contributes to the net value of plans containing this action.
	Value float64
}

// NewAction creates an Action with the given conditions and cost and a
// zero value.
func NewAction(name string, preconditions, effects WorldState, cost float64) Action {
	return Action{
		Name:          name,
		Preconditions: preconditions,
		Effects:       effects,
		Cost:          cost,
	}
}

// IsApplicable reports whether every precondition strictly holds in the
// given state. UNKNOWN preconditions make an action inapplicable.
func (a Action) IsApplicable(state WorldState) bool {
	return state.Satisfies(a.Preconditions)
}

// Apply returns the state produced by running this action: effects
// overlaid on the input, all other keys unchanged.
func (a Action) Apply(state WorldState) WorldState {
	return state.Apply(a.Effects)
}

func (a Action) String() string {
	return fmt.Sprintf("Action[%s pre=%s effects=%s cost=%.2f]",
		a.Name, a.Preconditions, a.Effects, a.Cost)
}
