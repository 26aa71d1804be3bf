package commands

import (
	"fmt"

	"upside-down-research.com/oss/praxis/internal/agent"
)

// ValidateCommand validates an agent spec file.
type ValidateCommand struct {
	SpecFile string `arg:"" name:"spec" help:"Agent spec file to validate" type:"path"`
}

// Run executes the validate command.
func (cmd *ValidateCommand) Run() error {
	fmt.Printf("📋 Validating agent spec: %s\n\n", cmd.SpecFile)

	spec, err := agent.LoadSpec(cmd.SpecFile)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return fmt.Errorf("validation failed")
	}

	a, err := spec.Build(BuiltinRegistry())
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return fmt.Errorf("validation failed")
	}

	result := agent.Validate(a)
	PrintValidationResult(result)

	if !result.IsValid() {
		return fmt.Errorf("validation failed")
	}
	return nil
}

// PrintValidationResult renders errors and warnings for the console.
func PrintValidationResult(result *agent.ValidationResult) {
	for _, e := range result.Errors {
		fmt.Printf("❌ %s\n", e.Error())
	}
	for _, w := range result.Warnings {
		fmt.Printf("⚠️  %s\n", w.Error())
	}
	if result.IsValid() {
		fmt.Println("✓ Agent is valid and deployable")
	} else {
		fmt.Printf("\n%d error(s), %d warning(s)\n", len(result.Errors), len(result.Warnings))
	}
}
