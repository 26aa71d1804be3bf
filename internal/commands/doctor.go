package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"upside-down-research.com/oss/praxis/internal/config"
	"upside-down-research.com/oss/praxis/internal/llm"
)

// DoctorCommand runs system diagnostics.
type DoctorCommand struct {
	Config string `name:"config" help:"Configuration file path" type:"path"`
}

// Run executes the doctor command.
func (cmd *DoctorCommand) Run() error {
	fmt.Println("🏥 Running Praxis diagnostics...")
	fmt.Println()

	allOk := true

	cfg, err := config.LoadConfig(cmd.Config)
	if err != nil {
		fmt.Printf("❌ Config: %v\n", err)
		return fmt.Errorf("validation failed")
	}
	fmt.Println("✓ Configuration: loaded")

	// Provider credentials
	switch cfg.LLM.Provider {
	case "openai":
		key := cfg.LLM.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key != "" {
			fmt.Println("✓ OpenAI API key: configured")
		} else {
			fmt.Println("❌ OpenAI API key: not found")
			fmt.Println("  Fix: export OPENAI_API_KEY=sk-...")
			allOk = false
		}
	case "dummy":
		fmt.Println("✓ Dummy provider: no API key required")
	default:
		fmt.Printf("❌ Unknown LLM provider: %s\n", cfg.LLM.Provider)
		allOk = false
	}

	// Model pricing coverage
	if cfg.LLM.Model != "" {
		if llm.KnownModel(cfg.LLM.Model) {
			fmt.Printf("✓ Model pricing: known for %s\n", cfg.LLM.Model)
		} else {
			fmt.Printf("⚠️  Model pricing: unknown for %s, spend tracking will record $0\n", cfg.LLM.Model)
		}
	}

	// Output directory writable
	if cfg.Output.Directory != "" {
		if err := checkWritable(cfg.Output.Directory); err != nil {
			fmt.Printf("❌ Output directory: %v\n", err)
			allOk = false
		} else {
			fmt.Printf("✓ Output directory: %s (writable)\n", cfg.Output.Directory)
		}
	}

	// Exporters
	if cfg.Metrics.PushGatewayURL != "" {
		fmt.Printf("✓ Pushgateway: %s (job %s)\n", cfg.Metrics.PushGatewayURL, cfg.Metrics.PushJobName)
	}
	if cfg.Metrics.InfluxURL != "" {
		if cfg.Metrics.InfluxOrg == "" || cfg.Metrics.InfluxBucket == "" {
			fmt.Println("❌ InfluxDB: url set but org or bucket missing")
			allOk = false
		} else {
			fmt.Printf("✓ InfluxDB: %s → %s/%s\n", cfg.Metrics.InfluxURL, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		}
	}

	fmt.Println()
	if allOk {
		fmt.Println("🎉 All systems ready!")
		return nil
	}
	fmt.Println("⚠️  Some issues found - please fix before running")
	return fmt.Errorf("validation failed")
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	probe := filepath.Join(dir, ".praxis-doctor")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return err
	}
	return os.Remove(probe)
}
