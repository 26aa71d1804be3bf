package commands

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"upside-down-research.com/oss/praxis/internal/config"
)

// ConfigCommand manages configuration.
type ConfigCommand struct {
	Init ConfigInitCommand `cmd:"" help:"Create a new configuration file"`
	Show ConfigShowCommand `cmd:"" help:"Print the effective configuration"`
}

// ConfigInitCommand creates a new config file.
type ConfigInitCommand struct {
	Output string `name:"output" help:"Output path for config file" default:"praxis.yaml"`
	Force  bool   `name:"force" help:"Overwrite existing file"`
}

// Run executes the config init command.
func (cmd *ConfigInitCommand) Run() error {
	if _, err := os.Stat(cmd.Output); err == nil && !cmd.Force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cmd.Output)
	}

	err := os.WriteFile(cmd.Output, []byte(config.ExampleConfig()), 0644)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("✓ Created configuration file: %s\n", cmd.Output)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Edit the config file to set your API keys")
	fmt.Println("  2. Run 'praxis doctor' to verify configuration")
	fmt.Println("  3. Run 'praxis run <agent.yaml>' to start an agent")

	return nil
}

// ConfigShowCommand prints the loaded configuration with defaults and
// environment expansion applied.
type ConfigShowCommand struct {
	Config string `name:"config" help:"Configuration file path" type:"path"`
}

// Run executes the config show command.
func (cmd *ConfigShowCommand) Run() error {
	cfg, err := config.LoadConfig(cmd.Config)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
