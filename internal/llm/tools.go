package llm

import (
	"context"
	"time"

	"upside-down-research.com/oss/praxis/internal/events"
)

// ToolCallback is one function the model may call during a completion.
type ToolCallback struct {
	Name        string
	Description string
	Execute     func(ctx context.Context, input string) (string, error)
}

// ToolGroup is a named bundle of related callbacks an agent or action can
// declare.
type ToolGroup struct {
	Name  string
	Tools []ToolCallback
}

// UnionTools merges tool groups into a flat callback list, deduplicated
// by tool name. The first occurrence of a name wins; later groups cannot
// shadow earlier ones.
func UnionTools(groups ...ToolGroup) []ToolCallback {
	seen := make(map[string]bool)
	var out []ToolCallback
	for _, g := range groups {
		for _, t := range g.Tools {
			if seen[t.Name] {
				continue
			}
			seen[t.Name] = true
			out = append(out, t)
		}
	}
	return out
}

// OutputTransformer rewrites a tool's output before it is handed back to
// the model.
type OutputTransformer func(toolName, output string) string

// InvocationRecorder receives a notification for every tool execution.
type InvocationRecorder interface {
	RecordInvocation(toolName string, duration time.Duration, err error)
}

// DecorateTools wraps each callback so every execution is timed, emitted
// as a ToolInvocationEvent attributed to processID, recorded, and passed
// through the transformer.
func DecorateTools(tools []ToolCallback, processID string, listener events.EventListener, recorder InvocationRecorder, transform OutputTransformer) []ToolCallback {
	out := make([]ToolCallback, len(tools))
	for i, tool := range tools {
		inner := tool.Execute
		name := tool.Name
		out[i] = ToolCallback{
			Name:        tool.Name,
			Description: tool.Description,
			Execute: func(ctx context.Context, input string) (string, error) {
				started := time.Now()
				output, err := inner(ctx, input)
				elapsed := time.Since(started)
				if err == nil && transform != nil {
					output = transform(name, output)
				}
				if recorder != nil {
					recorder.RecordInvocation(name, elapsed, err)
				}
				if listener != nil {
					listener.Emit(events.ToolInvocationEvent{
						Base:     events.NewBase(processID),
						ToolName: name,
						Input:    input,
						Output:   output,
						Duration: elapsed,
						Err:      err,
					})
				}
				return output, err
			},
		}
	}
	return out
}
