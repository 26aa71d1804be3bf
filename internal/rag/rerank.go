package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/praxis/internal/llm"
)

// Rerank reorders results by model-assigned relevance to the query.
// Model flakiness is absorbed by retrying up to MaxAttempts; equal
// relevance preserves input order.
type Rerank struct {
	Ops         llm.Operations
	Caller      llm.Caller
	MaxAttempts int
}

func (Rerank) Name() string          { return "rerank" }
func (Rerank) Type() EnhancementType { return Reranking }

func (r Rerank) Estimate(resp *Response) Estimate {
	rec := Apply
	if len(resp.Results) < 2 {
		rec = Skip
	}
	return Estimate{
		ExpectedQualityGain: 0.3,
		EstimatedLatencyMs:  expensiveLatencyMs + len(resp.Results)*50,
		Recommendation:      rec,
	}
}

type ranking struct {
	Scores []rankedID `json:"scores"`
}

type rankedID struct {
	ID        string  `json:"id"`
	Relevance float64 `json:"relevance"`
}

func (r Rerank) Enhance(ctx context.Context, resp *Response) (*Response, error) {
	attempts := r.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}

	var ranked ranking
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		ranked, err = r.rank(ctx, resp)
		if err == nil {
			break
		}
		log.Warn("rerank attempt failed", "attempt", attempt, "err", err)
	}
	if err != nil {
		return nil, fmt.Errorf("rerank failed after %d attempt(s): %w", attempts, err)
	}

	relevance := make(map[string]float64, len(ranked.Scores))
	for _, s := range ranked.Scores {
		relevance[s.ID] = s.Relevance
	}

	out := resp.clone()
	sort.SliceStable(out.Results, func(i, j int) bool {
		return relevance[out.Results[i].Match.MatchID()] > relevance[out.Results[j].Match.MatchID()]
	})
	return out, nil
}

func (r Rerank) rank(ctx context.Context, resp *Response) (ranking, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Rate the relevance of each passage to the question %q on a 0 to 1 scale.\n\n", resp.Request.Query)
	for _, res := range resp.Results {
		chunk, ok := res.Match.(Chunk)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "[%s]\n%s\n\n", chunk.ID, chunk.Text)
	}
	return llm.CreateObject[ranking](ctx, r.Ops, sb.String(), llm.Interaction{}, r.Caller)
}
