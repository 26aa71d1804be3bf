package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upside-down-research.com/oss/praxis/internal/goap"
)

func issueCodes(issues []ValidationIssue) []string {
	codes := make([]string, len(issues))
	for i, issue := range issues {
		codes[i] = issue.Code
	}
	return codes
}

func validAgent() *Agent {
	return &Agent{
		Name: "researcher",
		Actions: []Action{{
			Name:     "research",
			Effects:  goap.WorldState{"hasReport": goap.True},
			CanRerun: true,
			Execute:  nopExecute,
		}},
		Goals: []goap.Goal{goap.NewGoal("report", goap.WorldState{"hasReport": goap.True}, 5)},
	}
}

func TestValidateAcceptsWellFormedAgent(t *testing.T) {
	result := Validate(validAgent())
	assert.True(t, result.IsValid(), "unexpected errors: %v", result.Errors)
}

func TestValidateEmptyAgent(t *testing.T) {
	result := Validate(&Agent{})
	require.False(t, result.IsValid())
	assert.Contains(t, issueCodes(result.Errors), CodeEmptyAgent)
}

func TestValidateMissingGoals(t *testing.T) {
	a := validAgent()
	a.Goals = nil
	result := Validate(a)
	require.False(t, result.IsValid())
	assert.Contains(t, issueCodes(result.Errors), CodeMissingGoals)
}

func TestValidateNoActions(t *testing.T) {
	a := validAgent()
	a.Actions = nil
	result := Validate(a)
	require.False(t, result.IsValid())
	assert.Contains(t, issueCodes(result.Errors), CodeNoActionsToGoals)
}

func TestValidateUnreachableGoal(t *testing.T) {
	a := validAgent()
	a.Goals = append(a.Goals, goap.NewGoal("impossible", goap.WorldState{"neverSet": goap.False}, 1))
	result := Validate(a)
	require.False(t, result.IsValid())
	assert.Contains(t, issueCodes(result.Errors), CodeNoPathToGoal)
}

func TestValidateDuplicateActionNames(t *testing.T) {
	a := validAgent()
	a.Actions = append(a.Actions, a.Actions[0])
	result := Validate(a)
	require.False(t, result.IsValid())
	assert.Contains(t, issueCodes(result.Errors), CodeDuplicateActionName)
}

func TestValidateMissingExecutor(t *testing.T) {
	a := validAgent()
	a.Actions[0].Execute = nil
	result := Validate(a)
	require.False(t, result.IsValid())
	assert.Contains(t, issueCodes(result.Errors), CodeInvalidActionSignature)
}
