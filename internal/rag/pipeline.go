package rag

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/praxis/internal/events"
)

// DefaultQualityThreshold is the overall score above which the adaptive
// pipeline stops paying for slow enhancers.
const DefaultQualityThreshold = 0.7

// expensiveLatencyMs is the estimate above which an enhancer counts as
// slow for adaptive skipping.
const expensiveLatencyMs = 1000

// Pipeline runs an ordered list of enhancers over retrieval responses,
// skipping or stopping early to respect quality and latency budgets.
type Pipeline struct {
	enhancers        []Enhancer
	adaptive         bool
	qualityThreshold float64
	listener         events.EventListener
	now              func() time.Time
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithAdaptive toggles quality-aware skipping. On by default.
func WithAdaptive(adaptive bool) PipelineOption {
	return func(p *Pipeline) { p.adaptive = adaptive }
}

// WithQualityThreshold overrides the adaptive skip threshold.
func WithQualityThreshold(threshold float64) PipelineOption {
	return func(p *Pipeline) { p.qualityThreshold = threshold }
}

// WithListener wires the platform event stream.
func WithListener(l events.EventListener) PipelineOption {
	return func(p *Pipeline) { p.listener = l }
}

// NewPipeline creates a pipeline over the given enhancers, applied in
// order.
func NewPipeline(enhancers []Enhancer, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		enhancers:        enhancers,
		adaptive:         true,
		qualityThreshold: DefaultQualityThreshold,
		listener:         events.NopListener{},
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run enhances a response. Per enhancer, in order: skip slow stages when
// the response already scores above the quality threshold, stop the whole
// pipeline once the latency budget is spent, skip stages that recommend
// skipping, otherwise apply and annotate. An enhancer error drops that
// stage but keeps the pipeline going.
func (p *Pipeline) Run(ctx context.Context, processID string, response *Response) *Response {
	started := p.now()

	p.listener.Emit(events.RagRequestReceivedEvent{
		Base:       events.NewBase(processID),
		Query:      response.Request.Query,
		MatchCount: len(response.Results),
	})

	var applied []string
	current := response
	for _, enhancer := range p.enhancers {
		estimate := enhancer.Estimate(current)

		if p.adaptive && current.Quality != nil &&
			current.Quality.OverallScore > p.qualityThreshold &&
			estimate.EstimatedLatencyMs > expensiveLatencyMs {
			log.Debug("skipping slow enhancer on good response", "enhancer", enhancer.Name(), "score", current.Quality.OverallScore)
			continue
		}

		elapsed := p.now().Sub(started)
		if budget := current.Request.DesiredMaxLatency; budget > 0 && elapsed > budget {
			log.Debug("latency budget spent, stopping pipeline", "elapsed", elapsed, "budget", budget)
			break
		}

		if estimate.Recommendation == Skip {
			continue
		}

		p.listener.Emit(events.EnhancementStartingEvent{
			Base:     events.NewBase(processID),
			Enhancer: enhancer.Name(),
		})

		stageStart := p.now()
		enhanced, err := enhancer.Enhance(ctx, current)
		stageTime := p.now().Sub(stageStart)

		p.listener.Emit(events.EnhancementCompletedEvent{
			Base:     events.NewBase(processID),
			Enhancer: enhancer.Name(),
			Applied:  err == nil,
			Duration: stageTime,
			Err:      err,
		})

		if err != nil {
			log.Warn("enhancer failed, continuing", "enhancer", enhancer.Name(), "err", err)
			continue
		}

		enhanced.Enhancement = &Enhancement{
			Enhancer:        enhancer.Name(),
			Basis:           current.Enhancement,
			ProcessingTime:  stageTime,
			TokensProcessed: estimate.EstimatedTokenCost,
		}
		current = enhanced
		applied = append(applied, enhancer.Name())
	}

	p.listener.Emit(events.RagResponseEvent{
		Base:         events.NewBase(processID),
		Query:        current.Request.Query,
		MatchCount:   len(current.Results),
		Duration:     p.now().Sub(started),
		Enhancements: applied,
	})
	return current
}
