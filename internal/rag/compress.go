package rag

import (
	"context"
	"fmt"
	"strings"

	"upside-down-research.com/oss/praxis/internal/async"
	"upside-down-research.com/oss/praxis/internal/llm"
)

// irrelevantMarker is the model's verdict that a chunk does not bear on
// the query at all.
const irrelevantMarker = "irrelevant"

// ContextualCompression asks the model to shrink long chunks down to the
// parts relevant to the query. Chunks the model judges irrelevant are
// dropped entirely. Work fans out with bounded concurrency.
type ContextualCompression struct {
	Ops    llm.Operations
	Caller llm.Caller
}

func (ContextualCompression) Name() string          { return "contextualCompression" }
func (ContextualCompression) Type() EnhancementType { return Compression }

func (c ContextualCompression) Estimate(r *Response) Estimate {
	minLength := r.Request.Compression.minLength()
	chars, candidates := 0, 0
	for _, res := range r.Results {
		chunk, ok := res.Match.(Chunk)
		if !ok || len(chunk.Text) <= minLength {
			continue
		}
		candidates++
		chars += len(chunk.Text)
	}
	rec := Apply
	if candidates == 0 {
		rec = Skip
	}
	return Estimate{
		ExpectedQualityGain: 0.2,
		EstimatedLatencyMs:  expensiveLatencyMs + candidates*200,
		EstimatedTokenCost:  chars / 4,
		Recommendation:      rec,
	}
}

func (c ContextualCompression) Enhance(ctx context.Context, r *Response) (*Response, error) {
	cfg := r.Request.Compression
	minLength := cfg.minLength()

	compressed, err := async.ParallelMap(ctx, r.Results, cfg.concurrency(),
		func(ctx context.Context, res Result) (*Result, error) {
			chunk, ok := res.Match.(Chunk)
			if !ok || len(chunk.Text) <= minLength {
				return &res, nil
			}
			text, err := c.compressChunk(ctx, r.Request.Query, chunk.Text)
			if err != nil {
				return nil, err
			}
			if strings.EqualFold(strings.TrimSpace(text), irrelevantMarker) {
				return nil, nil
			}
			chunk.Text = text
			res.Match = chunk
			return &res, nil
		})
	if err != nil {
		return nil, err
	}

	out := r.clone()
	out.Results = out.Results[:0]
	for _, res := range compressed {
		if res != nil {
			out.Results = append(out.Results, *res)
		}
	}
	return out, nil
}

func (c ContextualCompression) compressChunk(ctx context.Context, query, text string) (string, error) {
	prompt := fmt.Sprintf(
		"Compress the passage below to only the sentences relevant to the question.\n"+
			"If nothing in it is relevant, reply with exactly %q.\n\nQuestion: %s\n\nPassage:\n%s",
		irrelevantMarker, query, text)
	return c.Ops.Generate(ctx, prompt, llm.Interaction{}, c.Caller)
}
