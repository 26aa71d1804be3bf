package commands

import (
	"fmt"
	"os"

	"upside-down-research.com/oss/praxis/internal/agent"
	"upside-down-research.com/oss/praxis/internal/config"
	"upside-down-research.com/oss/praxis/internal/llm"
)

// EstimateCommand estimates the model spend of running an agent spec.
type EstimateCommand struct {
	SpecFile string `arg:"" name:"spec" help:"Agent spec file" type:"path"`
	Config   string `name:"config" help:"Configuration file path" type:"path"`
	Model    string `name:"model" help:"Override model from config"`

	// OutputTokens is the assumed completion size per model-backed action.
	OutputTokens int `name:"output-tokens" help:"Assumed output tokens per model call" default:"1024"`
}

// Run executes the estimate command.
func (cmd *EstimateCommand) Run() error {
	fmt.Printf("💰 Estimating model spend for: %s\n\n", cmd.SpecFile)

	cfg, err := config.LoadConfig(cmd.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	model := cmd.Model
	if model == "" {
		model = cfg.LLM.Model
	}

	spec, err := agent.LoadSpec(cmd.SpecFile)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(cmd.SpecFile)
	if err != nil {
		return fmt.Errorf("failed to read spec file: %w", err)
	}

	// Worst case: every action makes one model call carrying the whole
	// spec as context.
	pricing := llm.PricingFor(model)
	inputTokens := llm.EstimateTokens(string(data))
	calls := len(spec.Actions)
	usage := llm.Usage{
		InputTokens:  inputTokens * calls,
		OutputTokens: cmd.OutputTokens * calls,
	}
	cost := pricing.Cost(usage)

	fmt.Printf("Model:           %s", model)
	if !llm.KnownModel(model) {
		fmt.Print(" (no rate card, spend will report as $0)")
	}
	fmt.Println()
	fmt.Printf("Actions:         %d\n", calls)
	fmt.Printf("Input tokens:    ~%d\n", usage.InputTokens)
	fmt.Printf("Output tokens:   ~%d\n", usage.OutputTokens)
	fmt.Printf("Estimated cost:  $%.4f\n", cost)
	fmt.Println()
	fmt.Println("Actual spend depends on replans and rerunnable actions; the")
	fmt.Println("run artifact records what really happened.")

	return nil
}
