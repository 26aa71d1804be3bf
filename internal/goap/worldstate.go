package goap

import (
	"sort"
	"strings"
)

// WorldState maps condition names to their three-valued determination.
// Missing keys are UNKNOWN. World states are treated as immutable: every
// transition produces a new state, the receiver is never modified.
type WorldState map[string]ConditionDetermination

// NewWorldState creates a new empty WorldState.
func NewWorldState() WorldState {
	return make(WorldState)
}

// Get returns the determination for a condition, UNKNOWN when absent.
func (ws WorldState) Get(key string) ConditionDetermination {
	if v, ok := ws[key]; ok {
		return v
	}
	return Unknown
}

// Has reports whether the state carries an explicit entry for key.
func (ws WorldState) Has(key string) bool {
	_, ok := ws[key]
	return ok
}

// Clone creates an independent copy of the WorldState.
func (ws WorldState) Clone() WorldState {
	clone := make(WorldState, len(ws))
	for k, v := range ws {
		clone[k] = v
	}
	return clone
}

// With returns a new state equal to the receiver plus one assignment.
func (ws WorldState) With(key string, v ConditionDetermination) WorldState {
	next := ws.Clone()
	next[key] = v
	return next
}

// Apply returns a new state with the given effects overlaid on the receiver.
// Keys not named by the effects are unchanged.
func (ws WorldState) Apply(effects WorldState) WorldState {
	next := ws.Clone()
	for k, v := range effects {
		next[k] = v
	}
	return next
}

// Satisfies reports whether every required key strictly matches.
// UNKNOWN never satisfies a specific TRUE or FALSE requirement.
func (ws WorldState) Satisfies(required WorldState) bool {
	for k, want := range required {
		if !ws.Get(k).Satisfies(want) {
			return false
		}
	}
	return true
}

// UnsatisfiedCount counts the required keys the state does not meet.
// This is the planner's goal-distance heuristic.
func (ws WorldState) UnsatisfiedCount(required WorldState) int {
	n := 0
	for k, want := range required {
		if !ws.Get(k).Satisfies(want) {
			n++
		}
	}
	return n
}

// Key returns a canonical representation of the state, suitable for use
// as a closed-set key: sorted "name=value" pairs joined by commas.
func (ws WorldState) Key() string {
	if len(ws) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(ws))
	for k := range ws {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(string(ws[k]))
	}
	sb.WriteByte('}')
	return sb.String()
}

func (ws WorldState) String() string {
	return ws.Key()
}
