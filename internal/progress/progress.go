// Package progress renders a live console trace of an agent run.
package progress

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"upside-down-research.com/oss/praxis/internal/events"
)

// Indicator provides progress tracking for long-running agent processes.
type Indicator struct {
	enabled bool
	mu      sync.Mutex
	start   time.Time
}

// NewIndicator creates a new progress indicator.
func NewIndicator(enabled bool) *Indicator {
	return &Indicator{
		enabled: enabled,
		start:   time.Now(),
	}
}

// Phase sets the current phase.
func (p *Indicator) Phase(name string) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Printf("\n📋 %s\n", name)
}

// Step sets the current step within a phase.
func (p *Indicator) Step(name string) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Printf("  ├─ %s\n", name)
}

// Success marks a step as successful.
func (p *Indicator) Success(name string) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Printf("  └─ ✓ %s\n", name)
}

// Error shows an error.
func (p *Indicator) Error(name string, err error) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Printf("  └─ ✗ %s: %v\n", name, err)
}

// Info shows an informational message.
func (p *Indicator) Info(msg string) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Printf("  │  %s\n", msg)
}

// Plan shows a committed plan.
func (p *Indicator) Plan(goal string, actions []string, cost float64) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Printf("  ├─ Plan → %s (cost %.1f)\n", goal, cost)
	for _, a := range actions {
		fmt.Printf("  │  ├─ %s\n", a)
	}
}

// LLMCall shows a model round trip.
func (p *Indicator) LLMCall(model string, inputTokens, outputTokens int, d time.Duration) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Printf("  │  ├─ %s: %s in / %s out tokens (%s)\n",
		model, formatNumber(inputTokens), formatNumber(outputTokens), formatDuration(d))
}

// ToolCall shows a tool invocation.
func (p *Indicator) ToolCall(name string, d time.Duration, err error) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		fmt.Printf("  │  ├─ tool %s failed after %s: %v\n", name, formatDuration(d), err)
		return
	}
	fmt.Printf("  │  ├─ tool %s (%s)\n", name, formatDuration(d))
}

// Elapsed returns time since start.
func (p *Indicator) Elapsed() time.Duration {
	return time.Since(p.start)
}

// Summary prints the final summary.
func (p *Indicator) Summary(success bool, details string) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	symbol := "✓"
	if !success {
		symbol = "✗"
	}

	elapsed := time.Since(p.start)
	fmt.Printf("\n%s Complete in %s\n", symbol, formatDuration(elapsed))
	if details != "" {
		fmt.Printf("  %s\n", details)
	}
}

// Listener bridges the platform event stream onto the indicator, so a
// run narrates itself.
func (p *Indicator) Listener() events.EventListener {
	return events.ListenerFunc(func(e events.Event) {
		switch ev := e.(type) {
		case events.PlanFormulatedEvent:
			p.Plan(ev.GoalName, ev.ActionNames, ev.PlanCost)
		case events.GoalAchievedEvent:
			p.Success(fmt.Sprintf("Goal achieved: %s", ev.GoalName))
		case events.LlmResponseEvent:
			if ev.Err == nil {
				p.LLMCall(ev.Model, ev.InputTokens, ev.OutputTokens, ev.Duration)
			}
		case events.ToolInvocationEvent:
			p.ToolCall(ev.ToolName, ev.Duration, ev.Err)
		case events.AgentProcessKillEvent:
			p.Info("Process killed")
		}
	})
}

func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	// Add commas
	var parts []string
	for i := len(s); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		parts = append([]string{s[start:i]}, parts...)
	}
	return strings.Join(parts, ",")
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", minutes, seconds)
}
