package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"upside-down-research.com/oss/praxis/internal/goap"
)

// Validation issue codes.
const (
	CodeEmptyAgent             = "EMPTY_AGENT"
	CodeMissingGoals           = "MISSING_GOALS"
	CodeNoActionsToGoals       = "NO_ACTIONS_TO_GOALS"
	CodeNoPathToGoal           = "NO_PATH_TO_GOAL"
	CodeInvalidActionSignature = "INVALID_ACTION_SIGNATURE"
	CodeDuplicateActionName    = "DUPLICATE_ACTION_NAME"
)

// ValidationIssue is one problem found in an agent definition.
type ValidationIssue struct {
	Code    string
	Field   string
	Message string
	Fix     string
}

func (e ValidationIssue) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Code, e.Field, e.Message)
	if e.Fix != "" {
		msg += fmt.Sprintf("\n  Fix: %s", e.Fix)
	}
	return msg
}

// ValidationResult holds everything found while validating an agent.
type ValidationResult struct {
	Errors   []ValidationIssue
	Warnings []ValidationIssue
}

// IsValid reports whether the agent can be deployed.
func (v *ValidationResult) IsValid() bool {
	return len(v.Errors) == 0
}

// AddError records a deployment-blocking issue.
func (v *ValidationResult) AddError(code, field, message, fix string) {
	v.Errors = append(v.Errors, ValidationIssue{Code: code, Field: field, Message: message, Fix: fix})
}

// AddWarning records a non-blocking issue.
func (v *ValidationResult) AddWarning(code, field, message, fix string) {
	v.Warnings = append(v.Warnings, ValidationIssue{Code: code, Field: field, Message: message, Fix: fix})
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks an agent definition structurally and semantically: the
// struct tags must hold, actions need names and executors, and each goal
// must be reachable by some optimistic action sequence.
func Validate(a *Agent) *ValidationResult {
	result := &ValidationResult{}

	if a == nil || (a.Name == "" && len(a.Actions) == 0 && len(a.Goals) == 0) {
		result.AddError(CodeEmptyAgent, "agent", "agent definition is empty",
			"give the agent a name, at least one action, and at least one goal")
		return result
	}

	if err := validate.Struct(a); err != nil {
		if invalid, ok := err.(*validator.InvalidValidationError); ok {
			result.AddError(CodeEmptyAgent, "agent", invalid.Error(), "")
			return result
		}
		for _, fe := range err.(validator.ValidationErrors) {
			switch {
			case fe.StructNamespace() == "Agent.Goals":
				result.AddError(CodeMissingGoals, "goals", "agent declares no goals",
					"add at least one goal with preconditions")
			default:
				result.AddError(CodeInvalidActionSignature, fe.StructNamespace(),
					fmt.Sprintf("constraint %q violated", fe.Tag()), "")
			}
		}
	}

	seen := make(map[string]bool, len(a.Actions))
	for i, act := range a.Actions {
		field := fmt.Sprintf("actions[%d]", i)
		if act.Name == "" {
			continue
		}
		if seen[act.Name] {
			result.AddError(CodeDuplicateActionName, field,
				fmt.Sprintf("action name %q appears more than once", act.Name),
				"action names must be unique within an agent")
		}
		seen[act.Name] = true
		if act.Execute == nil {
			result.AddError(CodeInvalidActionSignature, field,
				fmt.Sprintf("action %q has no executor", act.Name),
				"attach an Execute function")
		}
	}

	if len(a.Goals) > 0 && len(a.Actions) == 0 {
		result.AddError(CodeNoActionsToGoals, "actions", "agent has goals but no actions",
			"add actions whose effects reach the goal preconditions")
	}

	if result.IsValid() {
		checkGoalReachability(a, result)
	}
	return result
}

// checkGoalReachability plans to each goal from the most optimistic
// start: every precondition-relevant condition assumed true except
// has-run fences. A goal no plan can reach under those assumptions can
// never be reached at runtime either.
func checkGoalReachability(a *Agent, result *ValidationResult) {
	system := a.PlanningSystem()
	start := goap.NewWorldState()
	for _, name := range system.KnownConditions() {
		if strings.HasPrefix(name, hasRunPrefix) {
			start[name] = goap.False
		} else {
			start[name] = goap.True
		}
	}

	planner := goap.NewPlanner(&goap.StaticDeterminer{State: start})
	for _, goal := range a.Goals {
		plan, err := planner.PlanToGoal(context.Background(), system.Actions, goal)
		if err != nil {
			result.AddError(CodeNoPathToGoal, "goals",
				fmt.Sprintf("planning to goal %q failed: %v", goal.Name, err), "")
			continue
		}
		if plan == nil {
			result.AddError(CodeNoPathToGoal, "goals",
				fmt.Sprintf("no action sequence can reach goal %q", goal.Name),
				"add actions whose effects establish the goal's preconditions")
		}
	}
}
