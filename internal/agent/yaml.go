package agent

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"upside-down-research.com/oss/praxis/internal/goap"
)

// Spec is the on-disk YAML form of an agent definition. Executors cannot
// be serialized; each action names one and it is bound from a Registry at
// load time.
type Spec struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Goals       []GoalSpec      `yaml:"goals"`
	Actions     []ActionSpec    `yaml:"actions"`
	Conditions  []ConditionSpec `yaml:"conditions"`
}

type GoalSpec struct {
	Name          string            `yaml:"name"`
	Preconditions map[string]string `yaml:"preconditions"`
	Value         float64           `yaml:"value"`
}

type ActionSpec struct {
	Name          string            `yaml:"name"`
	Description   string            `yaml:"description"`
	Preconditions map[string]string `yaml:"preconditions"`
	Effects       map[string]string `yaml:"effects"`
	Cost          float64           `yaml:"cost"`
	Value         float64           `yaml:"value"`
	CanRerun      bool              `yaml:"can_rerun"`
	Executor      string            `yaml:"executor"`
}

type ConditionSpec struct {
	Name      string `yaml:"name"`
	Expensive bool   `yaml:"expensive"`
}

// Executor is a named action implementation that can be referenced from
// a spec file.
type Executor func(ctx context.Context, pc *ProcessContext) (ActionStatus, error)

// Registry maps executor names to implementations for late binding.
type Registry map[string]Executor

// LoadSpec reads a YAML agent spec, expanding ${ENV_VAR} references.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agent spec: %w", err)
	}
	expanded := os.ExpandEnv(string(data))

	var spec Spec
	if err := yaml.Unmarshal([]byte(expanded), &spec); err != nil {
		return nil, fmt.Errorf("parse agent spec: %w", err)
	}
	return &spec, nil
}

// Build turns a spec into a runnable agent, binding each action's named
// executor from the registry.
func (s *Spec) Build(registry Registry) (*Agent, error) {
	a := &Agent{Name: s.Name, Description: s.Description}

	for _, g := range s.Goals {
		pre, err := parseState(g.Preconditions)
		if err != nil {
			return nil, fmt.Errorf("goal %s: %w", g.Name, err)
		}
		a.Goals = append(a.Goals, goap.NewGoal(g.Name, pre, g.Value))
	}

	for _, as := range s.Actions {
		pre, err := parseState(as.Preconditions)
		if err != nil {
			return nil, fmt.Errorf("action %s: %w", as.Name, err)
		}
		eff, err := parseState(as.Effects)
		if err != nil {
			return nil, fmt.Errorf("action %s: %w", as.Name, err)
		}
		exec, ok := registry[as.Executor]
		if !ok {
			return nil, fmt.Errorf("action %s: no executor registered under %q", as.Name, as.Executor)
		}
		a.Actions = append(a.Actions, Action{
			Name:          as.Name,
			Description:   as.Description,
			Preconditions: pre,
			Effects:       eff,
			Cost:          as.Cost,
			Value:         as.Value,
			CanRerun:      as.CanRerun,
			Execute:       affirmEffects(exec, eff),
		})
	}

	for _, c := range s.Conditions {
		a.Conditions = append(a.Conditions, Condition{Name: c.Name, Expensive: c.Expensive})
	}
	return a, nil
}

// affirmEffects mirrors an action's declared effects onto the blackboard
// after a successful execution. Spec-file executors are generic and
// cannot set conditions themselves, so without this a late-bound agent's
// world state would never reflect its own progress.
func affirmEffects(exec Executor, effects goap.WorldState) Executor {
	return func(ctx context.Context, pc *ProcessContext) (ActionStatus, error) {
		status, err := exec(ctx, pc)
		if status != ActionSucceeded || err != nil {
			return status, err
		}
		for name, v := range effects {
			switch v {
			case goap.True:
				pc.Blackboard.SetCondition(name, true)
			case goap.False:
				pc.Blackboard.SetCondition(name, false)
			}
		}
		return status, nil
	}
}

// SaveSpec writes the planner-facing parts of an agent back to YAML.
func SaveSpec(spec *Spec, path string) error {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return fmt.Errorf("marshal agent spec: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write agent spec: %w", err)
	}
	return nil
}

func parseState(m map[string]string) (goap.WorldState, error) {
	ws := goap.NewWorldState()
	for k, v := range m {
		switch v {
		case "true", "TRUE", "True":
			ws[k] = goap.True
		case "false", "FALSE", "False":
			ws[k] = goap.False
		case "unknown", "UNKNOWN", "Unknown":
			ws[k] = goap.Unknown
		default:
			return nil, fmt.Errorf("condition %s: invalid determination %q", k, v)
		}
	}
	return ws, nil
}
