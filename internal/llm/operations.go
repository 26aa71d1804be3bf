package llm

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/praxis/internal/events"
)

// Caller identifies the agent process on whose behalf a model call is
// made. Callers that also implement InvocationRecorder get per-tool
// statistics.
type Caller interface {
	ID() string
}

// Interaction carries the per-conversation settings of a model call.
type Interaction struct {
	SystemPrompt      string
	MaxTokens         int
	Temperature       float64
	Tools             []ToolGroup
	OutputTransformer OutputTransformer
}

// Operations is the model facade the rest of the platform calls through.
// Every call unions the relevant tool groups, emits request and response
// events attributed to the caller, and times the round trip.
type Operations interface {
	Generate(ctx context.Context, prompt string, interaction Interaction, caller Caller, extra ...ToolGroup) (string, error)
	CreateObjectInto(ctx context.Context, prompt string, interaction Interaction, caller Caller, target any, extra ...ToolGroup) error
}

// ClientOperations implements Operations over a Client.
type ClientOperations struct {
	client   Client
	listener events.EventListener
	sink     InvocationSink
}

// NewOperations builds the facade. listener and sink may be nil.
func NewOperations(client Client, listener events.EventListener, sink InvocationSink) *ClientOperations {
	if listener == nil {
		listener = events.NopListener{}
	}
	return &ClientOperations{client: client, listener: listener, sink: sink}
}

func (o *ClientOperations) Generate(ctx context.Context, prompt string, interaction Interaction, caller Caller, extra ...ToolGroup) (string, error) {
	res, err := o.complete(ctx, "generate", prompt, interaction, caller, extra)
	if err != nil {
		return "", err
	}
	return res.Content, nil
}

func (o *ClientOperations) CreateObjectInto(ctx context.Context, prompt string, interaction Interaction, caller Caller, target any, extra ...ToolGroup) error {
	typeName := targetTypeName(target)
	full := extractionPrompt(prompt, typeName, target)

	res, err := o.complete(ctx, "createObject", full, interaction, caller, extra)
	if err != nil {
		return err
	}
	raw := stripCodeFence(res.Content)
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return &ExtractionError{TypeName: typeName, Raw: res.Content, Cause: err}
	}
	return nil
}

// complete is the shared setup and response path: decorate tools, emit
// the request event, invoke the model, emit the response event, record
// the invocation cost.
func (o *ClientOperations) complete(ctx context.Context, operation, prompt string, interaction Interaction, caller Caller, extra []ToolGroup) (*Response, error) {
	processID := ""
	if caller != nil {
		processID = caller.ID()
	}
	var recorder InvocationRecorder
	if r, ok := caller.(InvocationRecorder); ok {
		recorder = r
	}

	groups := append(append([]ToolGroup{}, interaction.Tools...), extra...)
	tools := DecorateTools(UnionTools(groups...), processID, o.listener, recorder, interaction.OutputTransformer)

	o.listener.Emit(events.LlmRequestEvent{
		Base:      events.NewBase(processID),
		Model:     o.client.Model(),
		Operation: operation,
		Prompt:    prompt,
		ToolCount: len(tools),
	})

	started := time.Now()
	res, err := o.client.Complete(ctx, Request{
		System:      interaction.SystemPrompt,
		Messages:    UserMessage(prompt),
		MaxTokens:   interaction.MaxTokens,
		Temperature: interaction.Temperature,
		Tools:       tools,
	})
	elapsed := time.Since(started)

	responseEvent := events.LlmResponseEvent{
		Base:      events.NewBase(processID),
		Model:     o.client.Model(),
		Operation: operation,
		Duration:  elapsed,
		Err:       err,
	}
	if res != nil {
		responseEvent.Content = res.Content
		responseEvent.InputTokens = res.Usage.InputTokens
		responseEvent.OutputTokens = res.Usage.OutputTokens
	}
	o.listener.Emit(responseEvent)

	if err != nil {
		return nil, err
	}

	log.Debug("completion finished", "model", o.client.Model(), "operation", operation, "duration", elapsed, "in", res.Usage.InputTokens, "out", res.Usage.OutputTokens)

	if o.sink != nil {
		pricing := PricingFor(o.client.Model())
		o.sink.Record(Invocation{
			Model:     o.client.Model(),
			Operation: operation,
			Usage:     res.Usage,
			CostUSD:   pricing.Cost(res.Usage),
			Duration:  elapsed,
			At:        time.Now(),
		})
	}
	return res, nil
}

// CreateObject extracts a typed value, surfacing parse failure as an
// error.
func CreateObject[T any](ctx context.Context, ops Operations, prompt string, interaction Interaction, caller Caller, extra ...ToolGroup) (T, error) {
	var out T
	err := ops.CreateObjectInto(ctx, prompt, interaction, caller, &out, extra...)
	return out, err
}

// Result holds the outcome of a best-effort extraction.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the extraction produced a value.
func (r Result[T]) OK() bool { return r.Err == nil }

// CreateObjectIfPossible extracts a typed value, returning failure in the
// result instead of as an error.
func CreateObjectIfPossible[T any](ctx context.Context, ops Operations, prompt string, interaction Interaction, caller Caller, extra ...ToolGroup) Result[T] {
	v, err := CreateObject[T](ctx, ops, prompt, interaction, caller, extra...)
	return Result[T]{Value: v, Err: err}
}

func targetTypeName(target any) string {
	t := reflect.TypeOf(target)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return "object"
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// extractionPrompt wraps the caller's prompt with JSON output
// instructions shaped by the target's empty value.
func extractionPrompt(prompt, typeName string, target any) string {
	skeleton, err := json.Marshal(target)
	if err != nil {
		skeleton = []byte("{}")
	}
	var sb strings.Builder
	sb.WriteString(prompt)
	sb.WriteString("\n\nRespond with a single JSON ")
	sb.WriteString(typeName)
	sb.WriteString(" object matching this shape exactly, and nothing else:\n")
	sb.Write(skeleton)
	return sb.String()
}

// stripCodeFence removes a surrounding markdown code fence, if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
