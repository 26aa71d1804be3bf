package goap

import "context"

// WorldStateDeterminer derives world state on behalf of the planner.
// DetermineWorldState produces the full observed state; DetermineCondition
// resolves a single condition on demand, which lets implementations defer
// expensive evaluations until the planner actually needs them.
type WorldStateDeterminer interface {
	DetermineWorldState(ctx context.Context) WorldState
	DetermineCondition(ctx context.Context, name string) ConditionDetermination
}

// StaticDeterminer is a WorldStateDeterminer over fixed data: a base state
// plus per-condition resolutions handed out on demand. Useful in tests and
// demos where no blackboard exists.
type StaticDeterminer struct {
	State       WorldState
	Resolutions map[string]ConditionDetermination
}

func (d *StaticDeterminer) DetermineWorldState(ctx context.Context) WorldState {
	if d.State == nil {
		return NewWorldState()
	}
	return d.State.Clone()
}

func (d *StaticDeterminer) DetermineCondition(ctx context.Context, name string) ConditionDetermination {
	if v, ok := d.Resolutions[name]; ok {
		return v
	}
	return d.State.Get(name)
}

// resolver memoizes on-demand condition resolution for the duration of a
// single planning call. The first UNKNOWN encounter of a key asks the
// determiner; the answer (including a persistent UNKNOWN) is cached for
// the rest of the call.
type resolver struct {
	determiner WorldStateDeterminer
	cache      map[string]ConditionDetermination
	inFlight   map[string]bool
}

func newResolver(determiner WorldStateDeterminer) *resolver {
	return &resolver{
		determiner: determiner,
		cache:      make(map[string]ConditionDetermination),
		inFlight:   make(map[string]bool),
	}
}

// value returns the determination of key in state, invoking the
// determiner at most once per key when the state's answer is UNKNOWN.
func (r *resolver) value(ctx context.Context, state WorldState, key string) (ConditionDetermination, error) {
	if v, ok := state[key]; ok && v != Unknown {
		return v, nil
	}
	if v, ok := r.cache[key]; ok {
		return v, nil
	}
	if r.determiner == nil {
		return Unknown, nil
	}
	if r.inFlight[key] {
		return Unknown, ErrCyclicResolution
	}
	r.inFlight[key] = true
	v := r.determiner.DetermineCondition(ctx, key)
	delete(r.inFlight, key)
	r.cache[key] = v
	return v, nil
}

// satisfies evaluates a requirement set against a state with lazy
// resolution of UNKNOWN keys.
func (r *resolver) satisfies(ctx context.Context, state, required WorldState) (bool, error) {
	for k, want := range required {
		v, err := r.value(ctx, state, k)
		if err != nil {
			return false, err
		}
		if !v.Satisfies(want) {
			return false, nil
		}
	}
	return true, nil
}

// distance counts unmet requirements with lazy resolution.
func (r *resolver) distance(ctx context.Context, state, required WorldState) (int, error) {
	n := 0
	for k, want := range required {
		v, err := r.value(ctx, state, k)
		if err != nil {
			return 0, err
		}
		if !v.Satisfies(want) {
			n++
		}
	}
	return n, nil
}
