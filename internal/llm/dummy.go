package llm

import (
	"context"
	"reflect"
	"strings"

	"upside-down-research.com/oss/praxis/internal/events"
)

var loremWords = strings.Fields(
	"lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod tempor incididunt ut labore et dolore magna aliqua")

// DummyOperations is the test-mode model facade: no network, no cost.
// Generate returns placeholder prose and CreateObjectInto fills the
// target's fields with placeholder values, so agents can be exercised
// end to end without a provider.
type DummyOperations struct {
	listener events.EventListener
}

// NewDummyOperations builds the test facade. listener may be nil.
func NewDummyOperations(listener events.EventListener) *DummyOperations {
	if listener == nil {
		listener = events.NopListener{}
	}
	return &DummyOperations{listener: listener}
}

func (o *DummyOperations) Generate(ctx context.Context, prompt string, interaction Interaction, caller Caller, extra ...ToolGroup) (string, error) {
	o.emit(caller, "generate", prompt)
	n := 5 + len(prompt)%10
	return strings.Join(loremAt(len(prompt), n), " "), nil
}

func (o *DummyOperations) CreateObjectInto(ctx context.Context, prompt string, interaction Interaction, caller Caller, target any, extra ...ToolGroup) error {
	o.emit(caller, "createObject", prompt)
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return &ExtractionError{TypeName: targetTypeName(target), Raw: "", Cause: errNotPointer}
	}
	fillValue(v.Elem(), len(prompt))
	return nil
}

var errNotPointer = &StatusError{Code: 0, Body: "target must be a non-nil pointer"}

func (o *DummyOperations) emit(caller Caller, operation, prompt string) {
	processID := ""
	if caller != nil {
		processID = caller.ID()
	}
	o.listener.Emit(events.LlmRequestEvent{
		Base:      events.NewBase(processID),
		Model:     "dummy",
		Operation: operation,
		Prompt:    prompt,
	})
	o.listener.Emit(events.LlmResponseEvent{
		Base:      events.NewBase(processID),
		Model:     "dummy",
		Operation: operation,
	})
}

func loremAt(offset, n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = loremWords[(offset+i)%len(loremWords)]
	}
	return out
}

// fillValue populates v with deterministic placeholder data derived from
// the seed.
func fillValue(v reflect.Value, seed int) {
	if !v.CanSet() {
		return
	}
	switch v.Kind() {
	case reflect.String:
		v.SetString(strings.Join(loremAt(seed, 3), " "))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(int64(seed%7 + 1))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(uint64(seed%7 + 1))
	case reflect.Float32, reflect.Float64:
		v.SetFloat(float64(seed%10) / 10)
	case reflect.Bool:
		v.SetBool(true)
	case reflect.Slice:
		s := reflect.MakeSlice(v.Type(), 1, 1)
		fillValue(s.Index(0), seed+1)
		v.Set(s)
	case reflect.Map:
		m := reflect.MakeMap(v.Type())
		v.Set(m)
	case reflect.Ptr:
		p := reflect.New(v.Type().Elem())
		fillValue(p.Elem(), seed+1)
		v.Set(p)
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			fillValue(v.Field(i), seed+i+1)
		}
	}
}
