package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"upside-down-research.com/oss/praxis/internal/config"
	"upside-down-research.com/oss/praxis/internal/events"
	"upside-down-research.com/oss/praxis/internal/process"
	"upside-down-research.com/oss/praxis/internal/rag"
)

// EnhanceCommand runs a file of scored retrieval results through the
// enhancement pipeline, tuned by the config's rag section.
type EnhanceCommand struct {
	InputFile string `arg:"" name:"input" help:"JSON file of scored retrieval chunks" type:"path"`
	Config    string `name:"config" help:"Configuration file path" type:"path"`
	Query     string `name:"query" help:"The retrieval query the chunks answer" required:""`
	Output    string `name:"output" help:"Write enhanced chunks here instead of stdout" type:"path"`
	Test      bool   `name:"test" help:"Use the no-network dummy model"`

	// MaxLatencyMs bounds pipeline time; zero means no budget.
	MaxLatencyMs int `name:"max-latency-ms" help:"Latency budget for the pipeline"`
}

// scoredChunk is the on-disk form of one retrieval result.
type scoredChunk struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// enhanceCaller attributes the pipeline's model calls.
type enhanceCaller string

func (c enhanceCaller) ID() string { return string(c) }

// Run executes the enhance command.
func (cmd *EnhanceCommand) Run() error {
	cfg, err := config.LoadConfig(cmd.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := os.ReadFile(cmd.InputFile)
	if err != nil {
		return fmt.Errorf("read retrieval results: %w", err)
	}
	var chunks []scoredChunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return fmt.Errorf("parse retrieval results: %w", err)
	}

	listener := events.NewLoggingListener(nil)
	ops, err := buildOperations(cfg, cmd.Test, listener)
	if err != nil {
		return err
	}
	caller := enhanceCaller(process.NewProcessName())

	pipeline := rag.NewPipeline([]rag.Enhancer{
		rag.Dedup{},
		rag.ScoreFilter{Floor: cfg.Rag.ScoreFloor},
		rag.ContextualCompression{Ops: ops, Caller: caller},
		rag.Rerank{Ops: ops, Caller: caller, MaxAttempts: cfg.Retry.MaxAttempts},
	}, rag.WithQualityThreshold(cfg.Rag.QualityThreshold), rag.WithListener(listener))

	results := make([]rag.Result, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, rag.Result{
			Match: rag.Chunk{ID: c.ID, Text: c.Text, Metadata: c.Metadata},
			Score: c.Score,
		})
	}
	response := &rag.Response{
		Request: rag.Request{
			Query:             cmd.Query,
			DesiredMaxLatency: time.Duration(cmd.MaxLatencyMs) * time.Millisecond,
			Compression: rag.CompressionConfig{
				MinLengthToCompress: cfg.Rag.MinLengthToCompress,
				Concurrency:         cfg.Rag.CompressConcurrency,
			},
		},
		Results: results,
	}

	enhanced := pipeline.Run(context.Background(), caller.ID(), response)

	out := make([]scoredChunk, 0, len(enhanced.Results))
	for _, res := range enhanced.Results {
		chunk, ok := res.Match.(rag.Chunk)
		if !ok {
			continue
		}
		out = append(out, scoredChunk{
			ID:       chunk.ID,
			Text:     chunk.Text,
			Score:    res.Score,
			Metadata: chunk.Metadata,
		})
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal enhanced results: %w", err)
	}
	if cmd.Output == "" {
		fmt.Println(string(encoded))
		return nil
	}
	if err := os.WriteFile(cmd.Output, append(encoded, '\n'), 0644); err != nil {
		return fmt.Errorf("write enhanced results: %w", err)
	}
	fmt.Printf("Enhanced %d of %d chunks into %s\n", len(out), len(chunks), cmd.Output)
	return nil
}
