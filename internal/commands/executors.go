package commands

import (
	"context"
	"fmt"

	"upside-down-research.com/oss/praxis/internal/agent"
)

// Blackboard keys the built-in executors read and write.
const (
	promptKey = "prompt"
	resultKey = "result"
)

// BuiltinRegistry holds the executors an agent spec file can name
// without writing Go. Spec-file agents lean on single-shot fencing for
// planner progress; programmatic agents supply their own executors.
func BuiltinRegistry() agent.Registry {
	return agent.Registry{
		// noop succeeds without touching anything.
		"noop": func(ctx context.Context, pc *agent.ProcessContext) (agent.ActionStatus, error) {
			return agent.ActionSucceeded, nil
		},

		// generate sends the blackboard's prompt to the model and binds
		// the reply as the result.
		"generate": func(ctx context.Context, pc *agent.ProcessContext) (agent.ActionStatus, error) {
			prompt, _ := pc.Blackboard.Get(promptKey).(string)
			if prompt == "" {
				return agent.ActionFailed, fmt.Errorf("no %q bound on the blackboard", promptKey)
			}
			out, err := pc.Llm.Generate(ctx, prompt, pc.Interaction(""), pc)
			if err != nil {
				return agent.ActionFailed, err
			}
			pc.Blackboard.Bind(resultKey, out)
			return agent.ActionSucceeded, nil
		},

		// ask-user parks the process until a response arrives, then binds
		// it as the result.
		"ask-user": func(ctx context.Context, pc *agent.ProcessContext) (agent.ActionStatus, error) {
			if pc.UserResponse == "" {
				return agent.ActionWaiting, nil
			}
			pc.Blackboard.Bind(resultKey, pc.UserResponse)
			return agent.ActionSucceeded, nil
		},
	}
}
