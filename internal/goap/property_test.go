package goap

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// randomSystem builds a small random planning system from a seed. Keys are
// drawn from a small pool so plans of a few steps are common.
func randomSystem(seed int64) (*PlanningSystem, WorldState) {
	rng := rand.New(rand.NewSource(seed))
	keys := []string{"k0", "k1", "k2", "k3", "k4", "k5"}

	pick := func() string { return keys[rng.Intn(len(keys))] }
	randomConditions := func(max int) WorldState {
		ws := NewWorldState()
		for i := 0; i < rng.Intn(max+1); i++ {
			ws[pick()] = Determined(rng.Intn(2) == 0)
		}
		return ws
	}

	nActions := 2 + rng.Intn(8)
	actions := make([]Action, 0, nActions)
	for i := 0; i < nActions; i++ {
		effects := randomConditions(2)
		if len(effects) == 0 {
			effects[pick()] = True
		}
		actions = append(actions, Action{
			Name:          fmt.Sprintf("act-%d", i),
			Preconditions: randomConditions(2),
			Effects:       effects,
			Cost:          rng.Float64() * 4,
			Value:         rng.Float64(),
		})
	}

	nGoals := 1 + rng.Intn(3)
	goals := make([]Goal, 0, nGoals)
	for i := 0; i < nGoals; i++ {
		pre := randomConditions(2)
		if len(pre) == 0 {
			pre[pick()] = True
		}
		goals = append(goals, Goal{
			Name:          fmt.Sprintf("goal-%d", i),
			Preconditions: pre,
			Value:         rng.Float64() * 10,
		})
	}

	return NewPlanningSystem(actions, goals), randomConditions(3)
}

// TestPlanSoundnessProperty: any plan the planner returns, executed
// sequentially from the observed state, achieves the goal's preconditions.
func TestPlanSoundnessProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("returned plans achieve their goal", prop.ForAll(
		func(seed int64) bool {
			system, start := randomSystem(seed)
			planner := NewPlanner(&StaticDeterminer{State: start})

			for _, goal := range system.Goals {
				plan, err := planner.PlanToGoal(context.Background(), system.Actions, goal)
				if err != nil {
					return false
				}
				if plan == nil {
					continue
				}
				state := start.Clone()
				for _, a := range plan.Actions {
					if !a.IsApplicable(state) {
						return false
					}
					state = a.Apply(state)
				}
				if !goal.IsAchieved(state) {
					return false
				}
			}
			return true
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// TestPlanOrderingProperty: PlansToGoals sorts by net value descending,
// ties broken by lower cost, then goal name.
func TestPlanOrderingProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("plans are ordered by net value, cost, name", prop.ForAll(
		func(seed int64) bool {
			system, start := randomSystem(seed)
			planner := NewPlanner(&StaticDeterminer{State: start})

			plans, err := planner.PlansToGoals(context.Background(), system)
			if err != nil {
				return false
			}
			for i := 1; i < len(plans); i++ {
				prev, cur := plans[i-1], plans[i]
				if prev.NetValue() > cur.NetValue() {
					continue
				}
				if prev.NetValue() < cur.NetValue() {
					return false
				}
				if prev.Cost() > cur.Cost() {
					return false
				}
				if prev.Cost() == cur.Cost() && prev.Goal.Name > cur.Goal.Name {
					return false
				}
			}
			return true
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// TestPruneProperty: pruning never removes an action that appears in a
// plan found over the full action set.
func TestPruneProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("pruned systems preserve plans", prop.ForAll(
		func(seed int64) bool {
			system, start := randomSystem(seed)
			planner := NewPlanner(&StaticDeterminer{State: start})
			pruned := Prune(system)

			kept := make(map[string]bool, len(pruned.Actions))
			for _, a := range pruned.Actions {
				kept[a.Name] = true
			}

			for _, goal := range system.Goals {
				plan, err := planner.PlanToGoal(context.Background(), system.Actions, goal)
				if err != nil || plan == nil {
					continue
				}
				for _, a := range plan.Actions {
					if !kept[a.Name] {
						return false
					}
				}
			}
			return true
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}
