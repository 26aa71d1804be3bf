package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upside-down-research.com/oss/praxis/internal/goap"
)

const specYAML = `
name: researcher
description: gathers and summarizes sources
goals:
  - name: report
    preconditions:
      hasReport: "true"
    value: 5
actions:
  - name: research
    preconditions:
      topic:Topic: "true"
    effects:
      hasNotes: "true"
    cost: 2
    can_rerun: true
    executor: research
  - name: summarize
    preconditions:
      hasNotes: "true"
    effects:
      hasReport: "true"
    cost: 1
    executor: summarize
conditions:
  - name: approved
  - name: marketFresh
    expensive: true
`

func TestLoadAndBuildSpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(specYAML), 0644))

	spec, err := LoadSpec(path)
	require.NoError(t, err)
	assert.Equal(t, "researcher", spec.Name)

	registry := Registry{
		"research":  nopExecute,
		"summarize": nopExecute,
	}
	a, err := spec.Build(registry)
	require.NoError(t, err)

	require.Len(t, a.Actions, 2)
	assert.True(t, a.Actions[0].CanRerun)
	assert.False(t, a.Actions[1].CanRerun)
	assert.Equal(t, goap.True, a.Actions[0].Preconditions.Get("topic:Topic"))

	require.Len(t, a.Goals, 1)
	assert.Equal(t, goap.True, a.Goals[0].Preconditions.Get("hasReport"))

	require.Len(t, a.Conditions, 2)
	assert.True(t, a.Conditions[1].Expensive)

	result := Validate(a)
	assert.True(t, result.IsValid(), "unexpected errors: %v", result.Errors)
}

func TestBuiltActionsAffirmTheirEffects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(specYAML), 0644))

	spec, err := LoadSpec(path)
	require.NoError(t, err)
	a, err := spec.Build(Registry{"research": nopExecute, "summarize": nopExecute})
	require.NoError(t, err)

	pc := testContext(a)
	act, err := a.Action("summarize")
	require.NoError(t, err)

	status, err := act.Execute(context.Background(), pc)
	require.NoError(t, err)
	assert.Equal(t, ActionSucceeded, status)

	set, ok := pc.Blackboard.GetCondition("hasReport")
	assert.True(t, ok)
	assert.True(t, set)
}

func TestBuildFailsOnUnknownExecutor(t *testing.T) {
	spec := &Spec{
		Name:    "x",
		Actions: []ActionSpec{{Name: "a", Executor: "missing"}},
	}
	_, err := spec.Build(Registry{})
	assert.ErrorContains(t, err, "missing")
}

func TestBuildFailsOnBadDetermination(t *testing.T) {
	spec := &Spec{
		Name: "x",
		Goals: []GoalSpec{{
			Name:          "g",
			Preconditions: map[string]string{"k": "maybe"},
		}},
	}
	_, err := spec.Build(Registry{})
	assert.ErrorContains(t, err, "invalid determination")
}

func TestEnvExpansionInSpec(t *testing.T) {
	t.Setenv("PRAXIS_TEST_AGENT_NAME", "expanded")
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: ${PRAXIS_TEST_AGENT_NAME}\n"), 0644))

	spec, err := LoadSpec(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded", spec.Name)
}
