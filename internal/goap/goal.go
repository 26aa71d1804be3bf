package goap

import "fmt"

// Goal is a named target set of conditions with a value the planner uses
// to rank plans across goals.
type Goal struct {
	// Name identifies the goal.
	Name string

	// Preconditions must all strictly hold for the goal to be achieved.
	Preconditions WorldState

	// Value is the worth of achieving the goal.
	Value float64
}

// NewGoal creates a Goal.
func NewGoal(name string, preconditions WorldState, value float64) Goal {
	return Goal{Name: name, Preconditions: preconditions, Value: value}
}

// IsAchieved reports whether every goal precondition strictly matches.
func (g Goal) IsAchieved(state WorldState) bool {
	return state.Satisfies(g.Preconditions)
}

// Distance counts how many goal preconditions the state fails to meet.
func (g Goal) Distance(state WorldState) int {
	return state.UnsatisfiedCount(g.Preconditions)
}

func (g Goal) String() string {
	return fmt.Sprintf("Goal[%s requires=%s value=%.2f]", g.Name, g.Preconditions, g.Value)
}
