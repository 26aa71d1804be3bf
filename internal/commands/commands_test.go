package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upside-down-research.com/oss/praxis/internal/agent"
	"upside-down-research.com/oss/praxis/internal/blackboard"
	"upside-down-research.com/oss/praxis/internal/llm"
)

const demoSpec = `name: greeter
goals:
  - name: greeted
    preconditions:
      didGreet: "true"
    value: 10
actions:
  - name: greet
    effects:
      didGreet: "true"
    cost: 1
    executor: noop
conditions:
  - name: didGreet
`

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateCommandAcceptsWellFormedSpec(t *testing.T) {
	cmd := &ValidateCommand{SpecFile: writeSpec(t, demoSpec)}
	assert.NoError(t, cmd.Run())
}

func TestValidateCommandRejectsUnknownExecutor(t *testing.T) {
	bad := `name: broken
goals:
  - name: done
    preconditions:
      x: "true"
    value: 1
actions:
  - name: act
    effects:
      x: "true"
    executor: does-not-exist
`
	cmd := &ValidateCommand{SpecFile: writeSpec(t, bad)}
	assert.Error(t, cmd.Run())
}

func TestValidateCommandRejectsUnreachableGoal(t *testing.T) {
	// No action ever clears "tainted", so a goal requiring it false can
	// never be planned to.
	bad := `name: stuck
goals:
  - name: done
    preconditions:
      tainted: "false"
    value: 1
actions:
  - name: act
    effects:
      other: "true"
    executor: noop
conditions:
  - name: tainted
  - name: other
`
	cmd := &ValidateCommand{SpecFile: writeSpec(t, bad)}
	assert.Error(t, cmd.Run())
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "praxis.yaml")
	cmd := &ConfigInitCommand{Output: path}
	require.NoError(t, cmd.Run())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "provider: openai")

	// A second init without --force refuses to clobber.
	assert.Error(t, cmd.Run())
	cmd.Force = true
	assert.NoError(t, cmd.Run())
}

func TestGenerateExecutor(t *testing.T) {
	exec := BuiltinRegistry()["generate"]
	pc := &agent.ProcessContext{
		ProcessID:  "p",
		Blackboard: blackboard.New().Bind(promptKey, "say hi"),
		Llm:        llm.NewDummyOperations(nil),
	}

	status, err := exec(context.Background(), pc)
	require.NoError(t, err)
	assert.Equal(t, agent.ActionSucceeded, status)
	assert.NotEmpty(t, pc.Blackboard.Get(resultKey))
}

func TestGenerateExecutorRequiresPrompt(t *testing.T) {
	exec := BuiltinRegistry()["generate"]
	pc := &agent.ProcessContext{ProcessID: "p", Blackboard: blackboard.New()}

	status, err := exec(context.Background(), pc)
	assert.Error(t, err)
	assert.Equal(t, agent.ActionFailed, status)
}

func TestAskUserExecutor(t *testing.T) {
	exec := BuiltinRegistry()["ask-user"]
	pc := &agent.ProcessContext{ProcessID: "p", Blackboard: blackboard.New()}

	status, err := exec(context.Background(), pc)
	require.NoError(t, err)
	assert.Equal(t, agent.ActionWaiting, status)

	pc.UserResponse = "blue"
	status, err = exec(context.Background(), pc)
	require.NoError(t, err)
	assert.Equal(t, agent.ActionSucceeded, status)
	assert.Equal(t, "blue", pc.Blackboard.Get(resultKey))
}

func TestEnhanceCommandAppliesConfiguredPipeline(t *testing.T) {
	dir := t.TempDir()

	configPath := filepath.Join(dir, "praxis.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`llm:
  provider: dummy
rag:
  score_floor: 0.5
`), 0644))

	input := filepath.Join(dir, "chunks.json")
	require.NoError(t, os.WriteFile(input, []byte(`[
  {"id": "a", "text": "herons nest in tall trees", "score": 0.9},
  {"id": "a", "text": "herons nest in tall trees", "score": 0.9},
  {"id": "b", "text": "unrelated filler", "score": 0.2},
  {"id": "c", "text": "heron diets are mostly fish", "score": 0.8}
]`), 0644))

	output := filepath.Join(dir, "enhanced.json")
	cmd := &EnhanceCommand{
		InputFile: input,
		Config:    configPath,
		Query:     "where do herons nest",
		Output:    output,
		Test:      true,
	}
	require.NoError(t, cmd.Run())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var enhanced []scoredChunk
	require.NoError(t, json.Unmarshal(data, &enhanced))

	ids := make([]string, 0, len(enhanced))
	for _, c := range enhanced {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []string{"a", "c"}, ids, "duplicates collapsed, low scores dropped")
}

func TestRunCommandCompletesInTestMode(t *testing.T) {
	out := t.TempDir()
	cmd := &RunCommand{
		SpecFile: writeSpec(t, demoSpec),
		Test:     true,
		Output:   out,
		Quiet:    true,
	}
	require.NoError(t, cmd.Run())

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}
