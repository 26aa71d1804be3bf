package rag

import "context"

// Dedup drops results whose match id has been seen before, keeping the
// first occurrence in order.
type Dedup struct{}

func (Dedup) Name() string          { return "dedup" }
func (Dedup) Type() EnhancementType { return Deduplication }

func (Dedup) Estimate(r *Response) Estimate {
	return Estimate{
		ExpectedQualityGain: 0.05,
		EstimatedLatencyMs:  1,
		Recommendation:      Apply,
	}
}

func (Dedup) Enhance(ctx context.Context, r *Response) (*Response, error) {
	out := r.clone()
	seen := make(map[string]bool, len(r.Results))
	kept := out.Results[:0]
	for _, res := range out.Results {
		id := res.Match.MatchID()
		if seen[id] {
			continue
		}
		seen[id] = true
		kept = append(kept, res)
	}
	out.Results = kept
	return out, nil
}

// ScoreFilter drops results scoring below the floor, preserving order.
type ScoreFilter struct {
	Floor float64
}

func (ScoreFilter) Name() string          { return "scoreFilter" }
func (ScoreFilter) Type() EnhancementType { return Filtering }

func (f ScoreFilter) Estimate(r *Response) Estimate {
	rec := Apply
	if len(r.Results) == 0 {
		rec = Skip
	}
	return Estimate{
		ExpectedQualityGain: 0.05,
		EstimatedLatencyMs:  1,
		Recommendation:      rec,
	}
}

func (f ScoreFilter) Enhance(ctx context.Context, r *Response) (*Response, error) {
	out := r.clone()
	kept := out.Results[:0]
	for _, res := range out.Results {
		if res.Match != nil && res.Score >= f.Floor {
			kept = append(kept, res)
		}
	}
	out.Results = kept
	return out, nil
}
