package events

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Composite fans every event out to a set of listeners. Listeners can be
// added while events are flowing; Emit is safe for concurrent use.
type Composite struct {
	mu        sync.RWMutex
	listeners []EventListener
}

// NewComposite creates a composite over the given listeners.
func NewComposite(listeners ...EventListener) *Composite {
	return &Composite{listeners: listeners}
}

// Add registers another listener.
func (c *Composite) Add(l EventListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Emit delivers the event to every registered listener in registration
// order.
func (c *Composite) Emit(e Event) {
	c.mu.RLock()
	snapshot := make([]EventListener, len(c.listeners))
	copy(snapshot, c.listeners)
	c.mu.RUnlock()

	for _, l := range snapshot {
		l.Emit(e)
	}
}

// ListenerFunc adapts a function to the EventListener interface.
type ListenerFunc func(e Event)

func (f ListenerFunc) Emit(e Event) { f(e) }

// NopListener discards all events.
type NopListener struct{}

func (NopListener) Emit(Event) {}

// LoggingListener writes each event to a structured logger at debug
// level, with a concise per-type summary.
type LoggingListener struct {
	Logger *log.Logger
}

// NewLoggingListener creates a listener over the given logger, falling
// back to the package default logger.
func NewLoggingListener(logger *log.Logger) *LoggingListener {
	if logger == nil {
		logger = log.Default()
	}
	return &LoggingListener{Logger: logger}
}

func (l *LoggingListener) Emit(e Event) {
	switch ev := e.(type) {
	case AgentDeploymentEvent:
		l.Logger.Info("agent deployed", "agent", ev.AgentName)
	case AgentProcessCreationEvent:
		l.Logger.Info("process created", "agent", ev.AgentName, "process", ev.ProcessName)
	case PlanFormulatedEvent:
		l.Logger.Debug("plan formulated", "process", ev.Process, "goal", ev.GoalName, "steps", len(ev.ActionNames), "cost", ev.PlanCost)
	case GoalAchievedEvent:
		l.Logger.Info("goal achieved", "process", ev.Process, "goal", ev.GoalName)
	case LlmRequestEvent:
		l.Logger.Debug("llm request", "process", ev.Process, "model", ev.Model, "operation", ev.Operation, "tools", ev.ToolCount)
	case LlmResponseEvent:
		l.Logger.Debug("llm response", "process", ev.Process, "model", ev.Model, "duration", ev.Duration, "in", ev.InputTokens, "out", ev.OutputTokens, "err", ev.Err)
	case ToolInvocationEvent:
		l.Logger.Debug("tool invoked", "process", ev.Process, "tool", ev.ToolName, "duration", ev.Duration, "err", ev.Err)
	case AgentProcessKillEvent:
		l.Logger.Warn("process killed", "process", ev.Process, "name", ev.ProcessName)
	case RagRequestReceivedEvent:
		l.Logger.Debug("rag request", "process", ev.Process, "matches", ev.MatchCount)
	case RagResponseEvent:
		l.Logger.Debug("rag response", "process", ev.Process, "matches", ev.MatchCount, "duration", ev.Duration, "enhancements", ev.Enhancements)
	case EnhancementStartingEvent:
		l.Logger.Debug("enhancement starting", "process", ev.Process, "enhancer", ev.Enhancer)
	case EnhancementCompletedEvent:
		l.Logger.Debug("enhancement completed", "process", ev.Process, "enhancer", ev.Enhancer, "applied", ev.Applied, "duration", ev.Duration, "err", ev.Err)
	default:
		l.Logger.Debug("event", "process", e.ProcessID(), "at", e.Timestamp())
	}
}

// LlmTraceListener echoes model prompts and responses for one process at
// info level. The LoggingListener deliberately omits payload content;
// this listener carries it for operators who asked to see it.
type LlmTraceListener struct {
	Logger        *log.Logger
	Process       string
	ShowPrompts   bool
	ShowResponses bool
}

func (l *LlmTraceListener) Emit(e Event) {
	if e.ProcessID() != l.Process {
		return
	}
	switch ev := e.(type) {
	case LlmRequestEvent:
		if l.ShowPrompts {
			l.Logger.Info("llm prompt", "process", ev.Process, "model", ev.Model, "operation", ev.Operation, "prompt", ev.Prompt)
		}
	case LlmResponseEvent:
		if l.ShowResponses {
			l.Logger.Info("llm response", "process", ev.Process, "model", ev.Model, "operation", ev.Operation, "content", ev.Content)
		}
	}
}

// Recorder keeps an ordered in-memory copy of everything emitted. Used
// in tests and by the artifact exporter.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far, in emission order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events matched by the filter, in order.
func (r *Recorder) OfType(match func(Event) bool) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if match(e) {
			out = append(out, e)
		}
	}
	return out
}
