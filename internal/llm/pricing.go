package llm

import (
	"sync"
	"time"
)

// Pricing holds per-model rates in dollars per 1M tokens.
type Pricing struct {
	Model       string
	InputPer1M  float64
	OutputPer1M float64
}

var modelPricing = map[string]Pricing{
	"gpt-4-turbo": {
		Model:       "gpt-4-turbo",
		InputPer1M:  10.0,
		OutputPer1M: 30.0,
	},
	"gpt-4o": {
		Model:       "gpt-4o",
		InputPer1M:  2.5,
		OutputPer1M: 10.0,
	},
	"gpt-3.5-turbo": {
		Model:       "gpt-3.5-turbo",
		InputPer1M:  0.50,
		OutputPer1M: 1.50,
	},
	"claude-3-opus-20240229": {
		Model:       "claude-3-opus",
		InputPer1M:  15.0,
		OutputPer1M: 75.0,
	},
	"claude-3-haiku-20240307": {
		Model:       "claude-3-haiku",
		InputPer1M:  0.25,
		OutputPer1M: 1.25,
	},
	"claude-3-5-sonnet-20240620": {
		Model:       "claude-3.5-sonnet",
		InputPer1M:  3.0,
		OutputPer1M: 15.0,
	},
}

// PricingFor returns the rate card for a model. Unknown models get a
// zero rate card so their spend reports as zero rather than a guess.
func PricingFor(model string) Pricing {
	if p, ok := modelPricing[model]; ok {
		return p
	}
	return Pricing{Model: model}
}

// KnownModel reports whether a real rate card exists for the model.
func KnownModel(model string) bool {
	_, ok := modelPricing[model]
	return ok
}

// EstimateTokens gives a rough token count for text, at about four
// characters per token.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// Cost converts a usage report into dollars under this rate card.
func (p Pricing) Cost(u Usage) float64 {
	return float64(u.InputTokens)*p.InputPer1M/1_000_000 +
		float64(u.OutputTokens)*p.OutputPer1M/1_000_000
}

// Invocation is the cost record of one model call.
type Invocation struct {
	Model     string
	Operation string
	Usage     Usage
	CostUSD   float64
	Duration  time.Duration
	At        time.Time
}

// InvocationSink receives a record per model call, for accounting.
type InvocationSink interface {
	Record(inv Invocation)
}

// CostLedger is an in-memory InvocationSink that keeps running totals.
type CostLedger struct {
	mu          sync.Mutex
	invocations []Invocation
	totalUSD    float64
}

func NewCostLedger() *CostLedger { return &CostLedger{} }

func (l *CostLedger) Record(inv Invocation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.invocations = append(l.invocations, inv)
	l.totalUSD += inv.CostUSD
}

// TotalUSD returns the accumulated spend.
func (l *CostLedger) TotalUSD() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalUSD
}

// Invocations returns a copy of the recorded calls.
func (l *CostLedger) Invocations() []Invocation {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Invocation, len(l.invocations))
	copy(out, l.invocations)
	return out
}
