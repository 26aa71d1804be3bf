package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/praxis/internal/agent"
	"upside-down-research.com/oss/praxis/internal/config"
	"upside-down-research.com/oss/praxis/internal/events"
	"upside-down-research.com/oss/praxis/internal/llm"
	"upside-down-research.com/oss/praxis/internal/o11y"
	"upside-down-research.com/oss/praxis/internal/platform"
	"upside-down-research.com/oss/praxis/internal/process"
	"upside-down-research.com/oss/praxis/internal/progress"
)

// RunCommand deploys an agent spec and runs one process of it to a
// terminal status.
type RunCommand struct {
	SpecFile string            `arg:"" name:"spec" help:"Agent spec file (YAML)" type:"path"`
	Config   string            `name:"config" help:"Configuration file path" type:"path"`
	Model    string            `name:"model" help:"Override model from config"`
	Bind     map[string]string `name:"bind" help:"Blackboard bindings as key=value"`
	Test     bool              `name:"test" help:"Use the no-network dummy model"`
	Output   string            `name:"output" help:"Artifact directory override" type:"path"`
	Quiet    bool              `name:"quiet" short:"q" help:"Suppress the progress trace"`

	ShowPrompts   bool              `name:"show-prompts" help:"Echo every model prompt"`
	ShowResponses bool              `name:"show-responses" help:"Echo every raw model response"`
	Verbose       bool              `name:"verbose" short:"v" help:"Debug-level process logging"`
	Identity      map[string]string `name:"identity" help:"Identity bindings for tools as name=value"`
}

// Run executes the run command.
func (cmd *RunCommand) Run() error {
	cfg, err := config.LoadConfig(cmd.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Model != "" {
		cfg.LLM.Model = cmd.Model
	}
	if cmd.Output != "" {
		cfg.Output.Directory = cmd.Output
	}

	prog := progress.NewIndicator(!cmd.Quiet)

	prog.Phase("Loading agent")
	spec, err := agent.LoadSpec(cmd.SpecFile)
	if err != nil {
		prog.Error("Load failed", err)
		return err
	}
	a, err := spec.Build(BuiltinRegistry())
	if err != nil {
		prog.Error("Build failed", err)
		return err
	}
	prog.Success(fmt.Sprintf("Agent %s: %d actions, %d goals", a.Name, len(a.Actions), len(a.Goals)))

	p, closeObs, err := buildPlatform(cfg, cmd.Test, prog)
	if err != nil {
		return err
	}
	defer closeObs()

	prog.Phase("Deploying")
	if err := p.Deploy(a); err != nil {
		prog.Error("Deployment rejected", err)
		return err
	}
	prog.Success("Agent deployed")

	bindings := make(map[string]any, len(cmd.Bind))
	for k, v := range cmd.Bind {
		bindings[k] = v
	}
	proc, err := p.CreateAgentProcess(a.Name, bindings, agent.Options{
		Verbosity: agent.Verbosity{
			ShowPrompts:      cmd.ShowPrompts,
			ShowLlmResponses: cmd.ShowResponses,
			Debug:            cmd.Verbose,
		},
		Test:            cmd.Test || cfg.LLM.Provider == "dummy",
		OutputDirectory: cfg.Output.Directory,
		Identities:      cmd.Identity,
	})
	if err != nil {
		return err
	}

	prog.Phase(fmt.Sprintf("Running %s", proc.ID()))
	status := proc.Run(context.Background())

	artifactPath, err := process.Export(proc, cfg.Output.Directory)
	if err != nil {
		log.Warn("artifact export failed", "err", err)
	} else {
		prog.Info(fmt.Sprintf("Artifact: %s", artifactPath))
	}

	spent := p.Ledger().TotalUSD()
	prog.Summary(status == process.Completed,
		fmt.Sprintf("Status: %s, model spend: $%.4f", status, spent))

	if status != process.Completed {
		if reason := proc.FailureReason(); reason != "" {
			return fmt.Errorf("process ended %s: %s", status, reason)
		}
		return fmt.Errorf("process ended %s", status)
	}
	return nil
}

// buildPlatform assembles the platform from config: model operations,
// scheduler cap, repository window, and the configured observability
// exporters. The returned closer flushes them.
func buildPlatform(cfg *config.Config, test bool, prog *progress.Indicator) (*platform.AgentPlatform, func(), error) {
	// Operations emit onto a relay so the platform stream, created below,
	// can be attached after construction.
	relay := events.NewComposite()
	ops, err := buildOperations(cfg, test, relay)
	if err != nil {
		return nil, nil, err
	}

	opts := []platform.Option{
		platform.WithOperations(ops),
		platform.WithEventListener(prog.Listener()),
	}
	if cfg.Platform.WindowSize > 0 {
		opts = append(opts, platform.WithWindowSize(cfg.Platform.WindowSize))
	}
	if cfg.Platform.MaxConcurrent > 0 {
		opts = append(opts, platform.WithScheduler(process.NewCappedScheduler(cfg.Platform.MaxConcurrent)))
	}

	closer := func() {}
	if cfg.Metrics.PushGatewayURL != "" {
		metrics := o11y.NewMetrics().WithPushGateway(cfg.Metrics.PushGatewayURL, cfg.Metrics.PushJobName)
		opts = append(opts, platform.WithEventListener(metrics))
	}
	if cfg.Metrics.InfluxURL != "" {
		influx := o11y.NewInfluxRecorder(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken,
			cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		opts = append(opts, platform.WithEventListener(influx))
		closer = influx.Close
	}

	p := platform.New(opts...)
	relay.Add(p.Listener())
	return p, closer, nil
}

// buildOperations turns the LLM config section into a model facade.
func buildOperations(cfg *config.Config, test bool, listener events.EventListener) (llm.Operations, error) {
	if test || cfg.LLM.Provider == "dummy" {
		return llm.NewDummyOperations(listener), nil
	}

	switch cfg.LLM.Provider {
	case "openai":
		key := cfg.LLM.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		client := llm.NewOpenAIClient(key, cfg.LLM.Model)
		if cfg.LLM.Endpoint != "" {
			client.WithEndpoint(cfg.LLM.Endpoint)
		}
		if cfg.Retry.TimeoutSec > 0 {
			client.WithTimeout(time.Duration(cfg.Retry.TimeoutSec) * time.Second)
		}
		retrying := llm.NewRetryingClient(client, llm.RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   time.Duration(cfg.Retry.BaseDelayMs) * time.Millisecond,
		})
		return llm.NewOperations(retrying, listener, nil), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLM.Provider)
	}
}
