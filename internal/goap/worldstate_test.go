package goap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditionDetermination(t *testing.T) {
	t.Run("Determined lifts booleans", func(t *testing.T) {
		assert.Equal(t, True, Determined(true))
		assert.Equal(t, False, Determined(false))
	})

	t.Run("And truth table", func(t *testing.T) {
		cases := []struct {
			a, b, want ConditionDetermination
		}{
			{True, True, True},
			{True, False, False},
			{False, True, False},
			{False, False, False},
			{True, Unknown, Unknown},
			{Unknown, True, Unknown},
			{Unknown, Unknown, Unknown},
			{False, Unknown, False},
			{Unknown, False, False},
		}
		for _, c := range cases {
			assert.Equal(t, c.want, c.a.And(c.b), "%s AND %s", c.a, c.b)
		}
	})

	t.Run("UNKNOWN never satisfies a known requirement", func(t *testing.T) {
		assert.False(t, Unknown.Satisfies(True))
		assert.False(t, Unknown.Satisfies(False))
		assert.True(t, Unknown.Satisfies(Unknown))
		assert.True(t, True.Satisfies(True))
		assert.False(t, False.Satisfies(True))
	})
}

func TestWorldState(t *testing.T) {
	t.Run("missing keys are UNKNOWN", func(t *testing.T) {
		ws := NewWorldState()
		assert.Equal(t, Unknown, ws.Get("anything"))
		assert.False(t, ws.Has("anything"))
	})

	t.Run("Apply produces a new state", func(t *testing.T) {
		ws := WorldState{"a": True, "b": False}
		next := ws.Apply(WorldState{"b": True, "c": True})

		assert.Equal(t, True, next.Get("a"))
		assert.Equal(t, True, next.Get("b"))
		assert.Equal(t, True, next.Get("c"))

		// The original is untouched.
		assert.Equal(t, False, ws.Get("b"))
		assert.False(t, ws.Has("c"))
	})

	t.Run("Satisfies is strict", func(t *testing.T) {
		ws := WorldState{"a": True}
		assert.True(t, ws.Satisfies(WorldState{"a": True}))
		assert.False(t, ws.Satisfies(WorldState{"a": True, "b": True}))
		assert.False(t, ws.Satisfies(WorldState{"a": False}))
	})

	t.Run("UnsatisfiedCount", func(t *testing.T) {
		ws := WorldState{"a": True, "b": False}
		required := WorldState{"a": True, "b": True, "c": False}
		assert.Equal(t, 2, ws.UnsatisfiedCount(required))
	})

	t.Run("Key is canonical", func(t *testing.T) {
		a := WorldState{"x": True, "y": False}
		b := WorldState{"y": False, "x": True}
		assert.Equal(t, a.Key(), b.Key())
		assert.Equal(t, "{}", NewWorldState().Key())
	})
}

func TestPlanDerivedValues(t *testing.T) {
	plan := &Plan{
		Actions: []Action{
			{Name: "a", Cost: 1.5, Value: 0.5},
			{Name: "b", Cost: 2.0, Value: 1.0},
		},
		Goal: Goal{Name: "g", Value: 10},
	}
	assert.InDelta(t, 3.5, plan.Cost(), 1e-9)
	assert.InDelta(t, 1.5, plan.ActionsValue(), 1e-9)
	assert.InDelta(t, 8.0, plan.NetValue(), 1e-9)
	assert.False(t, plan.IsComplete())
	assert.True(t, (&Plan{Goal: plan.Goal}).IsComplete())
}

func TestKnownConditions(t *testing.T) {
	system := NewPlanningSystem(
		[]Action{
			{Name: "a", Preconditions: WorldState{"p": True}, Effects: WorldState{"e": True}},
		},
		[]Goal{
			{Name: "g", Preconditions: WorldState{"q": True}},
		},
	)
	assert.Equal(t, []string{"e", "p", "q"}, system.KnownConditions())
}
