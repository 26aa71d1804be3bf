// Package process is the execution engine: it drives an agent definition
// through the plan, act, replan loop, maintains the status machine and
// execution history, and stores live processes in a windowed repository.
package process

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/praxis/internal/agent"
	"upside-down-research.com/oss/praxis/internal/blackboard"
	"upside-down-research.com/oss/praxis/internal/events"
	"upside-down-research.com/oss/praxis/internal/goap"
	"upside-down-research.com/oss/praxis/internal/llm"
)

// ActionExecution is one history record. History is append-only and
// ordered by start time.
type ActionExecution struct {
	ActionName string             `json:"actionName"`
	StartedAt  time.Time          `json:"startedAt"`
	Duration   time.Duration      `json:"duration"`
	Status     agent.ActionStatus `json:"status"`
	Error      string             `json:"error,omitempty"`
}

// ToolUse is one tool invocation attributed to this process.
type ToolUse struct {
	ToolName string        `json:"toolName"`
	Duration time.Duration `json:"duration"`
	Failed   bool          `json:"failed"`
}

// pauseBackoff is how long Run sleeps before reconsulting the scheduler
// for a PAUSED process.
const pauseBackoff = 10 * time.Millisecond

// AgentProcess is one live run of an agent. Its tick loop executes on a
// single goroutine at a time; Kill and OnUserResponse may be called from
// any goroutine.
type AgentProcess struct {
	mu sync.Mutex

	id       string
	parentID string
	agentDef *agent.Agent
	options  agent.Options

	blackboard *blackboard.Blackboard
	status     Status
	reason     string
	history    []ActionExecution
	toolUses   []ToolUse
	llmCalls   []llm.Invocation

	currentGoal *goap.Goal
	createdAt   time.Time

	ops       llm.Operations
	listener  events.EventListener
	scheduler Scheduler
	logger    *log.Logger

	userResponse string
	resume       chan struct{}
}

// Config carries the collaborators a process needs.
type Config struct {
	ID        string
	ParentID  string
	Options   agent.Options
	Bindings  map[string]any
	Board     *blackboard.Blackboard
	Ops       llm.Operations
	Listener  events.EventListener
	Scheduler Scheduler
}

// New creates a RUNNING process for the agent. Missing collaborators get
// inert defaults; missing IDs are generated.
func New(a *agent.Agent, cfg Config) *AgentProcess {
	if cfg.ID == "" {
		cfg.ID = NewProcessName()
	}
	if cfg.Board == nil {
		cfg.Board = blackboard.New()
	}
	for k, v := range cfg.Bindings {
		cfg.Board.Bind(k, v)
	}
	if cfg.Listener == nil {
		cfg.Listener = events.NopListener{}
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = Pronto{}
	}
	if cfg.Ops == nil || cfg.Options.Test {
		cfg.Ops = llm.NewDummyOperations(cfg.Listener)
	}
	logger := log.With("process", cfg.ID)
	if cfg.Options.Verbosity.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	return &AgentProcess{
		id:         cfg.ID,
		parentID:   cfg.ParentID,
		agentDef:   a,
		options:    cfg.Options,
		blackboard: cfg.Board,
		status:     Running,
		createdAt:  time.Now(),
		ops:        cfg.Ops,
		listener:   cfg.Listener,
		scheduler:  cfg.Scheduler,
		logger:     logger,
		resume:     make(chan struct{}, 1),
	}
}

func (p *AgentProcess) ID() string       { return p.id }
func (p *AgentProcess) ParentID() string { return p.parentID }

// Agent returns the definition this process runs.
func (p *AgentProcess) Agent() *agent.Agent { return p.agentDef }

// Options returns the process options.
func (p *AgentProcess) Options() agent.Options { return p.options }

// Blackboard returns the process's blackboard.
func (p *AgentProcess) Blackboard() *blackboard.Blackboard { return p.blackboard }

// CreatedAt returns the creation timestamp.
func (p *AgentProcess) CreatedAt() time.Time { return p.createdAt }

// Status returns the current lifecycle state.
func (p *AgentProcess) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// FailureReason explains a FAILED status.
func (p *AgentProcess) FailureReason() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reason
}

// CurrentGoal returns the goal the planner last chose, if any.
func (p *AgentProcess) CurrentGoal() *goap.Goal {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentGoal == nil {
		return nil
	}
	g := *p.currentGoal
	return &g
}

// History returns a copy of the execution history.
func (p *AgentProcess) History() []ActionExecution {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ActionExecution, len(p.history))
	copy(out, p.history)
	return out
}

// HasRunSuccessfully reports whether the named action ever succeeded.
func (p *AgentProcess) HasRunSuccessfully(actionName string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, rec := range p.history {
		if rec.ActionName == actionName && rec.Status == agent.ActionSucceeded {
			return true
		}
	}
	return false
}

// RecordInvocation accumulates per-tool statistics; the model facade
// calls this for every decorated tool execution.
func (p *AgentProcess) RecordInvocation(toolName string, duration time.Duration, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.toolUses = append(p.toolUses, ToolUse{ToolName: toolName, Duration: duration, Failed: err != nil})
}

// ToolUses returns a copy of the tool statistics.
func (p *AgentProcess) ToolUses() []ToolUse {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ToolUse, len(p.toolUses))
	copy(out, p.toolUses)
	return out
}

// RecordLlmInvocation attributes a model call to this process.
func (p *AgentProcess) RecordLlmInvocation(inv llm.Invocation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.llmCalls = append(p.llmCalls, inv)
}

// LlmInvocations returns a copy of the attributed model calls.
func (p *AgentProcess) LlmInvocations() []llm.Invocation {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]llm.Invocation, len(p.llmCalls))
	copy(out, p.llmCalls)
	return out
}

// Kill terminates the process. The event is returned, and emitted, only
// when this call performed the transition; later calls return nil.
func (p *AgentProcess) Kill() *events.AgentProcessKillEvent {
	p.mu.Lock()
	if p.status.Terminal() {
		p.mu.Unlock()
		return nil
	}
	p.status = Terminated
	p.mu.Unlock()

	p.scheduler.Release(p.id)
	p.signalResume()

	ev := events.AgentProcessKillEvent{
		Base:        events.NewBase(p.id),
		ProcessName: p.id,
	}
	p.listener.Emit(ev)
	p.logger.Info("process killed", "agent", p.agentDef.Name)
	return &ev
}

// OnUserResponse resumes a WAITING process with the user's reply.
func (p *AgentProcess) OnUserResponse(response string) {
	p.mu.Lock()
	if p.status != Waiting {
		p.mu.Unlock()
		return
	}
	p.userResponse = response
	p.status = Running
	p.mu.Unlock()
	p.signalResume()
}

func (p *AgentProcess) signalResume() {
	select {
	case p.resume <- struct{}{}:
	default:
	}
}

// Run drives the process until it reaches a terminal status, blocks on
// WAITING until a user response arrives, and returns early only on
// context cancellation or a STUCK state nothing new can resolve.
func (p *AgentProcess) Run(ctx context.Context) Status {
	for {
		if ctx.Err() != nil {
			return p.Status()
		}
		switch status := p.Tick(ctx); status {
		case Running:
			continue
		case Waiting:
			select {
			case <-ctx.Done():
				return p.Status()
			case <-p.resume:
			}
		case Paused:
			select {
			case <-ctx.Done():
				return p.Status()
			case <-p.resume:
			case <-time.After(pauseBackoff):
			}
		case Stuck:
			// Nothing external has changed between two ticks; give
			// control back instead of spinning.
			return status
		default:
			p.scheduler.Release(p.id)
			return status
		}
	}
}

// Tick advances the process one step: consult the scheduler, plan,
// maybe execute one action, set the next status.
func (p *AgentProcess) Tick(ctx context.Context) Status {
	p.mu.Lock()
	status := p.status
	switch {
	case status.Terminal():
		p.mu.Unlock()
		return status
	case status == Waiting:
		p.mu.Unlock()
		return status
	case status == Paused, status == Running:
		if !p.scheduler.Allow(p.id) {
			p.status = Paused
			p.mu.Unlock()
			return Paused
		}
		p.status = Running
	case status == Stuck:
		// Replanning below may resolve a previously unknown condition.
		p.status = Running
	}
	pc := p.contextLocked()
	p.mu.Unlock()

	return p.plan(ctx, pc)
}

// plan runs one plan-act-replan iteration. Called with the mutex
// released; the process is RUNNING.
func (p *AgentProcess) plan(ctx context.Context, pc *agent.ProcessContext) Status {
	determiner := agent.NewDeterminer(p.agentDef, pc, p)
	planner := goap.NewPlanner(determiner)
	system := p.agentDef.PlanningSystem()

	plan, err := planner.BestValuePlanToAnyGoal(ctx, system)
	if err != nil {
		return p.fail(fmt.Sprintf("planning failed: %v", err))
	}
	if plan == nil {
		return p.transition(Stuck, "")
	}

	p.mu.Lock()
	if p.status.Terminal() {
		status := p.status
		p.mu.Unlock()
		return status
	}
	if p.currentGoal != nil && p.currentGoal.Name != plan.Goal.Name && !p.options.AllowGoalChange {
		reason := fmt.Sprintf("planner switched goal from %q to %q with goal changes disallowed",
			p.currentGoal.Name, plan.Goal.Name)
		p.status = Failed
		p.reason = reason
		p.mu.Unlock()
		p.logger.Warn("process failed", "reason", reason)
		return Failed
	}
	goal := plan.Goal
	p.currentGoal = &goal
	p.mu.Unlock()

	if plan.IsComplete() {
		p.listener.Emit(events.GoalAchievedEvent{
			Base:     events.NewBase(p.id),
			GoalName: goal.Name,
		})
		p.logger.Info("goal achieved", "goal", goal.Name)
		return p.transition(Completed, "")
	}

	p.listener.Emit(events.PlanFormulatedEvent{
		Base:        events.NewBase(p.id),
		GoalName:    goal.Name,
		ActionNames: plan.ActionNames(),
		PlanCost:    plan.Cost(),
	})

	return p.executeAction(ctx, pc, plan.Actions[0].Name)
}

// executeAction resolves and runs one action, appends the history
// record, and maps the action status onto the process status.
func (p *AgentProcess) executeAction(ctx context.Context, pc *agent.ProcessContext, actionName string) Status {
	live, err := p.agentDef.Action(actionName)
	if err != nil {
		return p.fail(err.Error())
	}

	groups := make([]llm.ToolGroup, 0, len(p.agentDef.ToolGroups)+len(live.ToolGroups))
	groups = append(groups, p.agentDef.ToolGroups...)
	groups = append(groups, live.ToolGroups...)
	pc.ToolGroups = groups

	started := time.Now()
	actionStatus, execErr := live.Execute(ctx, pc)
	elapsed := time.Since(started)
	if execErr != nil {
		actionStatus = agent.ActionFailed
	}

	record := ActionExecution{
		ActionName: actionName,
		StartedAt:  started,
		Duration:   elapsed,
		Status:     actionStatus,
	}
	if execErr != nil {
		record.Error = execErr.Error()
	}

	p.mu.Lock()
	p.history = append(p.history, record)
	if p.status.Terminal() {
		status := p.status
		p.mu.Unlock()
		return status
	}
	p.mu.Unlock()

	p.logger.Debug("action executed", "action", actionName, "status", actionStatus, "duration", elapsed, "err", execErr)

	switch actionStatus {
	case agent.ActionSucceeded:
		return p.transition(Running, "")
	case agent.ActionWaiting:
		return p.transition(Waiting, "")
	case agent.ActionPaused:
		return p.transition(Paused, "")
	default:
		if p.options.ContinueOnActionFailure {
			return p.transition(Running, "")
		}
		reason := fmt.Sprintf("action %q failed", actionName)
		if execErr != nil {
			reason = fmt.Sprintf("action %q failed: %v", actionName, execErr)
		}
		return p.fail(reason)
	}
}

// transition moves to the requested status unless a concurrent kill got
// there first.
func (p *AgentProcess) transition(next Status, reason string) Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status.Terminal() {
		return p.status
	}
	p.status = next
	p.reason = reason
	return next
}

func (p *AgentProcess) fail(reason string) Status {
	status := p.transition(Failed, reason)
	if status == Failed {
		p.logger.Warn("process failed", "reason", reason)
	}
	return status
}

// contextLocked builds the action-facing view of this process. Caller
// holds the mutex.
func (p *AgentProcess) contextLocked() *agent.ProcessContext {
	return &agent.ProcessContext{
		ProcessID:    p.id,
		AgentName:    p.agentDef.Name,
		Blackboard:   p.blackboard,
		Options:      p.options,
		Llm:          p.ops,
		Listener:     p.listener,
		History:      p,
		UserResponse: p.userResponse,
	}
}

// CreateChild spawns a process over a copy of this blackboard, running
// the given agent with inherited options.
func (p *AgentProcess) CreateChild(childAgent *agent.Agent) *AgentProcess {
	return New(childAgent, Config{
		ID:        ChildProcessID(p.agentDef.Name),
		ParentID:  p.id,
		Options:   p.options,
		Board:     p.blackboard.Spawn(),
		Ops:       p.ops,
		Listener:  p.listener,
		Scheduler: p.scheduler,
	})
}
