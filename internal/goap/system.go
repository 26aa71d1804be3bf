package goap

import "sort"

// PlanningSystem is the (actions, goals) pair a planner operates on.
type PlanningSystem struct {
	Actions []Action
	Goals   []Goal
}

// NewPlanningSystem creates a PlanningSystem.
func NewPlanningSystem(actions []Action, goals []Goal) *PlanningSystem {
	return &PlanningSystem{Actions: actions, Goals: goals}
}

// KnownConditions returns the sorted union of all condition names
// mentioned by action preconditions, action effects, and goal
// preconditions.
func (ps *PlanningSystem) KnownConditions() []string {
	seen := make(map[string]struct{})
	for _, a := range ps.Actions {
		for k := range a.Preconditions {
			seen[k] = struct{}{}
		}
		for k := range a.Effects {
			seen[k] = struct{}{}
		}
	}
	for _, g := range ps.Goals {
		for k := range g.Preconditions {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// checkUniqueActionNames returns a typed error when two actions share a name.
func checkUniqueActionNames(actions []Action) error {
	seen := make(map[string]struct{}, len(actions))
	for _, a := range actions {
		if _, dup := seen[a.Name]; dup {
			return &DuplicateActionError{Name: a.Name}
		}
		seen[a.Name] = struct{}{}
	}
	return nil
}

// Prune returns a copy of the system restricted to actions whose effects
// directly or transitively contribute to some goal's preconditions.
// Irrelevant actions inflate A* search without ever appearing in a plan.
func Prune(system *PlanningSystem) *PlanningSystem {
	goalKeys := make(map[string]struct{})
	for _, g := range system.Goals {
		for k := range g.Preconditions {
			goalKeys[k] = struct{}{}
		}
	}
	return &PlanningSystem{
		Actions: pruneActions(system.Actions, goalKeys),
		Goals:   system.Goals,
	}
}

// pruneActions computes the relevance fixpoint: start from the target
// condition keys, repeatedly add the preconditions of any action whose
// effects intersect the set, and retain only actions whose effects touch
// the final set.
func pruneActions(actions []Action, targetKeys map[string]struct{}) []Action {
	relevant := make(map[string]struct{}, len(targetKeys))
	for k := range targetKeys {
		relevant[k] = struct{}{}
	}

	for changed := true; changed; {
		changed = false
		for _, a := range actions {
			if !effectsTouch(a, relevant) {
				continue
			}
			for k := range a.Preconditions {
				if _, ok := relevant[k]; !ok {
					relevant[k] = struct{}{}
					changed = true
				}
			}
		}
	}

	kept := make([]Action, 0, len(actions))
	for _, a := range actions {
		if effectsTouch(a, relevant) {
			kept = append(kept, a)
		}
	}
	return kept
}

func effectsTouch(a Action, keys map[string]struct{}) bool {
	for k := range a.Effects {
		if _, ok := keys[k]; ok {
			return true
		}
	}
	return false
}
