// Package platform is the front door: deploy agent definitions, create
// and look up processes, and wire the shared services (model facade,
// event stream, repository, scheduler) they all use.
package platform

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/praxis/internal/agent"
	"upside-down-research.com/oss/praxis/internal/events"
	"upside-down-research.com/oss/praxis/internal/llm"
	"upside-down-research.com/oss/praxis/internal/process"
)

// DeploymentError wraps the validation issues that blocked a deploy.
type DeploymentError struct {
	AgentName string
	Result    *agent.ValidationResult
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("agent %q failed validation with %d error(s)", e.AgentName, len(e.Result.Errors))
}

// AgentPlatform owns the deployed agents and the services processes
// share. Safe for concurrent use.
type AgentPlatform struct {
	mu     sync.RWMutex
	agents map[string]*agent.Agent

	listener   *events.Composite
	repository *process.InMemoryRepository
	scheduler  process.Scheduler
	ops        llm.Operations
	ledger     *llm.CostLedger
}

// Option configures the platform.
type Option func(*AgentPlatform)

// WithOperations sets the model facade processes use.
func WithOperations(ops llm.Operations) Option {
	return func(p *AgentPlatform) { p.ops = ops }
}

// WithScheduler replaces the default always-allow scheduler.
func WithScheduler(s process.Scheduler) Option {
	return func(p *AgentPlatform) { p.scheduler = s }
}

// WithWindowSize bounds the process repository.
func WithWindowSize(n int) Option {
	return func(p *AgentPlatform) { p.repository = process.NewInMemoryRepository(n) }
}

// WithEventListener registers an extra listener on the platform stream.
func WithEventListener(l events.EventListener) Option {
	return func(p *AgentPlatform) { p.listener.Add(l) }
}

// New creates a platform. Without options it logs events, uses the
// always-allow scheduler, the default window, and the test-mode model
// facade.
func New(opts ...Option) *AgentPlatform {
	p := &AgentPlatform{
		agents:     make(map[string]*agent.Agent),
		listener:   events.NewComposite(events.NewLoggingListener(nil)),
		repository: process.NewInMemoryRepository(process.DefaultWindowSize),
		scheduler:  process.Pronto{},
		ledger:     llm.NewCostLedger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.ops == nil {
		p.ops = llm.NewDummyOperations(p.listener)
	}
	// Attribute model spend to the originating process.
	p.listener.Add(events.ListenerFunc(p.attributeLlmUsage))
	return p
}

// Deploy validates and registers an agent. Validation errors block the
// deployment.
func (p *AgentPlatform) Deploy(a *agent.Agent) error {
	result := agent.Validate(a)
	for _, warning := range result.Warnings {
		log.Warn("agent validation warning", "agent", a.Name, "issue", warning.Error())
	}
	if !result.IsValid() {
		return &DeploymentError{AgentName: a.Name, Result: result}
	}

	p.mu.Lock()
	p.agents[a.Name] = a
	p.mu.Unlock()

	p.listener.Emit(events.AgentDeploymentEvent{
		Base:      events.NewBase(""),
		AgentName: a.Name,
	})
	log.Info("agent deployed", "agent", a.Name, "actions", len(a.Actions), "goals", len(a.Goals))
	return nil
}

// Agent returns a deployed agent by name.
func (p *AgentPlatform) Agent(name string) (*agent.Agent, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	a, ok := p.agents[name]
	return a, ok
}

// CreateAgentProcess instantiates a process of a deployed agent, binds
// the caller's inputs onto a fresh blackboard, and stores it.
func (p *AgentPlatform) CreateAgentProcess(agentName string, bindings map[string]any, options agent.Options) (*process.AgentProcess, error) {
	a, ok := p.Agent(agentName)
	if !ok {
		return nil, fmt.Errorf("no deployed agent named %q", agentName)
	}

	ops := p.ops
	if options.Test {
		ops = llm.NewDummyOperations(p.listener)
	}

	proc := process.New(a, process.Config{
		ID:        process.NewProcessName(),
		Options:   options,
		Bindings:  bindings,
		Ops:       ops,
		Listener:  p.listener,
		Scheduler: p.scheduler,
	})
	p.repository.Save(proc)

	if options.Verbosity.ShowPrompts || options.Verbosity.ShowLlmResponses {
		p.listener.Add(&events.LlmTraceListener{
			Logger:        log.Default(),
			Process:       proc.ID(),
			ShowPrompts:   options.Verbosity.ShowPrompts,
			ShowResponses: options.Verbosity.ShowLlmResponses,
		})
	}

	p.listener.Emit(events.AgentProcessCreationEvent{
		Base:        events.NewBase(proc.ID()),
		AgentName:   a.Name,
		ProcessName: proc.ID(),
	})
	return proc, nil
}

// Process looks a process up by id.
func (p *AgentPlatform) Process(id string) (*process.AgentProcess, bool) {
	return p.repository.FindByID(id)
}

// Processes lists retained processes in creation order.
func (p *AgentPlatform) Processes() []*process.AgentProcess {
	return p.repository.List()
}

// Listener exposes the platform event stream for additional observers.
func (p *AgentPlatform) Listener() *events.Composite { return p.listener }

// Ledger exposes the accumulated model spend.
func (p *AgentPlatform) Ledger() *llm.CostLedger { return p.ledger }

// attributeLlmUsage turns response events into per-process invocation
// records and feeds the platform cost ledger.
func (p *AgentPlatform) attributeLlmUsage(e events.Event) {
	res, ok := e.(events.LlmResponseEvent)
	if !ok || res.Err != nil {
		return
	}
	usage := llm.Usage{InputTokens: res.InputTokens, OutputTokens: res.OutputTokens}
	inv := llm.Invocation{
		Model:     res.Model,
		Operation: res.Operation,
		Usage:     usage,
		CostUSD:   llm.PricingFor(res.Model).Cost(usage),
		Duration:  res.Duration,
		At:        res.Timestamp(),
	}
	p.ledger.Record(inv)
	if proc, ok := p.repository.FindByID(res.ProcessID()); ok {
		proc.RecordLlmInvocation(inv)
	}
}
