package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/praxis/internal/commands"
)

var CLI struct {
	Run      commands.RunCommand      `cmd:"" help:"Run an agent spec to completion" default:"withargs"`
	Validate commands.ValidateCommand `cmd:"" help:"Validate an agent spec file"`
	Estimate commands.EstimateCommand `cmd:"" help:"Estimate model spend for an agent spec"`
	Enhance  commands.EnhanceCommand  `cmd:"" help:"Run retrieval results through the enhancement pipeline"`
	Doctor   commands.DoctorCommand   `cmd:"" help:"Run system diagnostics"`
	Config   commands.ConfigCommand   `cmd:"" help:"Manage configuration"`
}

const banner = `
                      _
 _ __  _ __ __ ___  _(_)___
| '_ \| '__/ _' \ \/ / / __|
| |_) | | | (_| |>  <| \__ \
| .__/|_|  \__,_/_/\_\_|___/
|_|

Goal-driven agents - plans from GOFAI, prose from LLMs
`

func main() {
	log.SetLevel(log.InfoLevel)

	ctx := kong.Parse(&CLI,
		kong.Name("praxis"),
		kong.Description("Praxis - goal-driven agent platform\n\nDeploy agents whose plans come from classical planning and whose content comes from LLMs."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: false,
			Summary: true,
		}),
	)

	// Show banner for main help
	if ctx.Command() == "" {
		fmt.Print(banner)
		fmt.Println("Quick start:")
		fmt.Println("  $ praxis config init            # Create config file")
		fmt.Println("  $ praxis doctor                 # Verify setup")
		fmt.Println("  $ praxis validate agent.yaml    # Check agent definition")
		fmt.Println("  $ praxis estimate agent.yaml    # See cost estimate")
		fmt.Println("  $ praxis run agent.yaml         # Run the agent")
		fmt.Println()
		fmt.Println("Run 'praxis --help' for all commands")
		os.Exit(0)
	}

	err := ctx.Run()
	if err != nil {
		log.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
