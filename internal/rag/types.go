// Package rag post-processes retrieval results: an adaptive pipeline of
// enhancers that deduplicate, compress, rerank, and filter matches under
// a caller-supplied latency budget.
package rag

import (
	"context"
	"time"
)

// Match is anything a retrieval service can return.
type Match interface {
	MatchID() string
}

// Chunk is the common match variant: a piece of text with provenance.
type Chunk struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (c Chunk) MatchID() string { return c.ID }

// Result is one scored match.
type Result struct {
	Match Match
	Score float64
}

// QualityMetrics summarizes how good a response already is; the pipeline
// skips expensive work on responses that score above its threshold.
type QualityMetrics struct {
	OverallScore float64
}

// CompressionConfig tunes the contextual compression enhancer.
type CompressionConfig struct {
	// MinLengthToCompress leaves shorter texts alone. Zero means the
	// default of 1500 characters.
	MinLengthToCompress int

	// Concurrency bounds parallel model calls. Zero means the default
	// of 15.
	Concurrency int
}

const (
	DefaultMinLengthToCompress = 1500
	DefaultCompressConcurrency = 15
)

func (c CompressionConfig) minLength() int {
	if c.MinLengthToCompress > 0 {
		return c.MinLengthToCompress
	}
	return DefaultMinLengthToCompress
}

func (c CompressionConfig) concurrency() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return DefaultCompressConcurrency
}

// Request describes what the caller asked of retrieval plus the budget
// the pipeline must respect.
type Request struct {
	Query             string
	TopK              int
	DesiredMaxLatency time.Duration
	Compression       CompressionConfig
}

// Enhancement annotates a response with the last pipeline stage that
// touched it. Basis chains to the annotation the stage started from.
type Enhancement struct {
	Enhancer        string
	Basis           *Enhancement
	ProcessingTime  time.Duration
	TokensProcessed int
}

// Response is a retrieval response flowing through the pipeline.
type Response struct {
	Request     Request
	Service     string
	Results     []Result
	Quality     *QualityMetrics
	Enhancement *Enhancement
}

// clone copies the response shell and result slice so enhancers can
// rewrite freely without aliasing their input.
func (r *Response) clone() *Response {
	out := *r
	out.Results = make([]Result, len(r.Results))
	copy(out.Results, r.Results)
	return &out
}

// EnhancementType classifies what an enhancer does.
type EnhancementType string

const (
	Deduplication EnhancementType = "DEDUPLICATION"
	Compression   EnhancementType = "COMPRESSION"
	Reranking     EnhancementType = "RERANKING"
	Filtering     EnhancementType = "FILTERING"
	Custom        EnhancementType = "CUSTOM"
)

// Recommendation is an enhancer's own judgement about whether it is
// worth running on a given response.
type Recommendation string

const (
	Apply       Recommendation = "APPLY"
	Skip        Recommendation = "SKIP"
	Conditional Recommendation = "CONDITIONAL"
)

// Estimate is an enhancer's cost forecast for one response.
type Estimate struct {
	ExpectedQualityGain float64
	EstimatedLatencyMs  int
	EstimatedTokenCost  int
	Recommendation      Recommendation
}

// Enhancer is one pipeline stage.
type Enhancer interface {
	Name() string
	Type() EnhancementType
	Estimate(r *Response) Estimate
	Enhance(ctx context.Context, r *Response) (*Response, error)
}
