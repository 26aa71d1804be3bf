package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"upside-down-research.com/oss/praxis/internal/blackboard"
	"upside-down-research.com/oss/praxis/internal/goap"
)

type Report struct {
	Body string
}

type stubHistory map[string]bool

func (h stubHistory) HasRunSuccessfully(name string) bool { return h[name] }

func testContext(a *Agent) *ProcessContext {
	return &ProcessContext{
		ProcessID:  "p-test",
		AgentName:  a.Name,
		Blackboard: blackboard.New(),
	}
}

func TestDeterminerBindingConditions(t *testing.T) {
	a := &Agent{
		Name:        "writer",
		DomainTypes: blackboard.NewDomainTypes(blackboard.DomainType{Name: "Report"}),
	}
	pc := testContext(a)
	d := NewDeterminer(a, pc, nil)
	ctx := context.Background()

	assert.Equal(t, goap.False, d.DetermineCondition(ctx, "draft:Report"))

	pc.Blackboard.Bind("draft", Report{Body: "hello"})
	assert.Equal(t, goap.True, d.DetermineCondition(ctx, "draft:Report"))

	// Type must match; an int bound under the name does not satisfy.
	pc.Blackboard.Bind("count", 3)
	assert.Equal(t, goap.False, d.DetermineCondition(ctx, "count:Report"))
}

func TestDeterminerListAndAllBindings(t *testing.T) {
	a := &Agent{Name: "writer", DomainTypes: blackboard.NewDomainTypes()}
	pc := testContext(a)
	d := NewDeterminer(a, pc, nil)
	ctx := context.Background()

	assert.Equal(t, goap.True, d.DetermineCondition(ctx, "all:Anything"))

	assert.Equal(t, goap.False, d.DetermineCondition(ctx, "sources:List"))
	pc.Blackboard.Bind("sources", []string{"a", "b"})
	assert.Equal(t, goap.True, d.DetermineCondition(ctx, "sources:List"))

	pc.Blackboard.Bind("scalar", 1)
	assert.Equal(t, goap.False, d.DetermineCondition(ctx, "scalar:List"))
}

func TestDeterminerHasRunConditions(t *testing.T) {
	a := &Agent{Name: "writer"}
	pc := testContext(a)
	history := stubHistory{"draft": true}
	d := NewDeterminer(a, pc, history)
	ctx := context.Background()

	assert.Equal(t, goap.True, d.DetermineCondition(ctx, "hasRun_draft"))
	assert.Equal(t, goap.False, d.DetermineCondition(ctx, "hasRun_review"))
}

func TestDeterminerNamedConditions(t *testing.T) {
	calls := 0
	a := &Agent{
		Name: "writer",
		Conditions: []Condition{
			{Name: "cheap", Eval: func(pc *ProcessContext) bool { calls++; return true }},
			{Name: "costly", Expensive: true, Eval: func(pc *ProcessContext) bool { return true }},
		},
	}
	pc := testContext(a)
	d := NewDeterminer(a, pc, nil)
	ctx := context.Background()

	assert.Equal(t, goap.True, d.determine("cheap", false))
	assert.Equal(t, 1, calls)

	// Expensive conditions stay unknown in a bulk determination but
	// resolve on an explicit ask.
	assert.Equal(t, goap.Unknown, d.determine("costly", false))
	assert.Equal(t, goap.True, d.DetermineCondition(ctx, "costly"))
}

func TestDeterminerOverridesAndDefaults(t *testing.T) {
	a := &Agent{
		Name:       "writer",
		Conditions: []Condition{{Name: "approved"}},
	}
	pc := testContext(a)
	d := NewDeterminer(a, pc, nil)
	ctx := context.Background()

	// Declared but never set reads false, not unknown.
	assert.Equal(t, goap.False, d.DetermineCondition(ctx, "approved"))

	pc.Blackboard.SetCondition("approved", true)
	assert.Equal(t, goap.True, d.DetermineCondition(ctx, "approved"))

	// Undeclared, never-set names stay unknown.
	assert.Equal(t, goap.Unknown, d.DetermineCondition(ctx, "mystery"))

	// An explicit override works even without a declaration.
	pc.Blackboard.SetCondition("mystery", false)
	assert.Equal(t, goap.False, d.DetermineCondition(ctx, "mystery"))
}

func TestDetermineWorldStateCoversKnownConditions(t *testing.T) {
	a := &Agent{
		Name: "writer",
		Actions: []Action{{
			Name:          "draft",
			Preconditions: goap.WorldState{"hasIdea": goap.True},
			Effects:       goap.WorldState{"hasDraft": goap.True},
			CanRerun:      true,
			Execute:       nopExecute,
		}},
		Goals: []goap.Goal{goap.NewGoal("done", goap.WorldState{"hasDraft": goap.True}, 1)},
	}
	pc := testContext(a)
	pc.Blackboard.SetCondition("hasIdea", true)
	d := NewDeterminer(a, pc, stubHistory{})

	state := d.DetermineWorldState(context.Background())
	assert.Equal(t, goap.True, state.Get("hasIdea"))
	assert.Equal(t, goap.Unknown, state.Get("hasDraft"))
}

func nopExecute(ctx context.Context, pc *ProcessContext) (ActionStatus, error) {
	return ActionSucceeded, nil
}

func TestPlanningSystemFencesSingleShotActions(t *testing.T) {
	a := &Agent{
		Name: "writer",
		Actions: []Action{
			{Name: "once", Effects: goap.WorldState{"done": goap.True}, Execute: nopExecute},
			{Name: "many", Effects: goap.WorldState{"done": goap.True}, CanRerun: true, Execute: nopExecute},
		},
		Goals: []goap.Goal{goap.NewGoal("g", goap.WorldState{"done": goap.True}, 1)},
	}

	system := a.PlanningSystem()
	byName := map[string]goap.Action{}
	for _, act := range system.Actions {
		byName[act.Name] = act
	}

	fence := HasRunCondition("once")
	assert.Equal(t, goap.False, byName["once"].Preconditions.Get(fence))
	assert.Equal(t, goap.True, byName["once"].Effects.Get(fence))
	assert.False(t, byName["many"].Preconditions.Has(HasRunCondition("many")))

	// Source action definitions are untouched.
	assert.False(t, a.Actions[0].Preconditions.Has(fence))
}
