package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/praxis/internal/agent"
	"upside-down-research.com/oss/praxis/internal/goap"
	"upside-down-research.com/oss/praxis/internal/llm"
	"upside-down-research.com/oss/praxis/internal/platform"
	"upside-down-research.com/oss/praxis/internal/process"
	"upside-down-research.com/oss/praxis/internal/progress"
)

// A programmatic agent: the planner sequences research, drafting and
// review, while the model facade writes the actual content. Runs against
// the dummy facade by default, so it works offline.

func main() {
	topic := flag.String("topic", "migratory patterns of geese", "research topic")
	output := flag.String("output", "./runs", "artifact directory")
	flag.Parse()

	log.SetLevel(log.InfoLevel)

	fmt.Println()
	fmt.Println("🧠 Research Agent: plans from GOFAI, prose from LLMs")
	fmt.Println()

	prog := progress.NewIndicator(true)
	p := platform.New(platform.WithEventListener(prog.Listener()))

	if err := p.Deploy(researchAgent()); err != nil {
		log.Error("Deployment failed", "error", err)
		os.Exit(1)
	}

	proc, err := p.CreateAgentProcess("researcher",
		map[string]any{"topic": *topic},
		agent.Options{Test: true, OutputDirectory: *output})
	if err != nil {
		log.Error("Process creation failed", "error", err)
		os.Exit(1)
	}

	prog.Phase(fmt.Sprintf("Researching %q as %s", *topic, proc.ID()))
	status := proc.Run(context.Background())

	path, err := process.Export(proc, *output)
	if err != nil {
		log.Error("Artifact export failed", "error", err)
	}

	prog.Summary(status == process.Completed,
		fmt.Sprintf("Status: %s, artifact: %s", status, path))
	if status != process.Completed {
		os.Exit(1)
	}
}

func researchAgent() *agent.Agent {
	searchTools := llm.ToolGroup{Name: "search", Tools: []llm.ToolCallback{{
		Name:        "search",
		Description: "Look up background material on a topic",
		Execute: func(ctx context.Context, input string) (string, error) {
			return fmt.Sprintf("Three background notes on %s.", input), nil
		},
	}}}

	return &agent.Agent{
		Name:        "researcher",
		Description: "Researches a topic and produces a reviewed report",
		Conditions: []agent.Condition{
			{Name: "notesGathered"},
			{Name: "draftWritten"},
			{Name: "reportReviewed"},
		},
		Actions: []agent.Action{
			{
				Name:       "Gather notes",
				Effects:    goap.WorldState{"notesGathered": goap.True},
				Cost:       2,
				ToolGroups: []llm.ToolGroup{searchTools},
				Execute: func(ctx context.Context, pc *agent.ProcessContext) (agent.ActionStatus, error) {
					topic, _ := pc.Blackboard.Get("topic").(string)
					notes, err := pc.Llm.Generate(ctx,
						"Collect key facts about "+topic,
						pc.Interaction("You are a meticulous researcher.", searchTools), pc)
					if err != nil {
						return agent.ActionFailed, err
					}
					pc.Blackboard.Bind("notes", notes)
					pc.Blackboard.SetCondition("notesGathered", true)
					return agent.ActionSucceeded, nil
				},
			},
			{
				Name:          "Write draft",
				Preconditions: goap.WorldState{"notesGathered": goap.True},
				Effects:       goap.WorldState{"draftWritten": goap.True},
				Cost:          5,
				Execute: func(ctx context.Context, pc *agent.ProcessContext) (agent.ActionStatus, error) {
					notes, _ := pc.Blackboard.Get("notes").(string)
					draft, err := pc.Llm.Generate(ctx,
						"Write a short report from these notes:\n"+notes,
						pc.Interaction("You write clear, sourced prose."), pc)
					if err != nil {
						return agent.ActionFailed, err
					}
					pc.Blackboard.Bind("draft", draft)
					pc.Blackboard.SetCondition("draftWritten", true)
					return agent.ActionSucceeded, nil
				},
			},
			{
				Name:          "Review report",
				Preconditions: goap.WorldState{"draftWritten": goap.True},
				Effects:       goap.WorldState{"reportReviewed": goap.True},
				Cost:          2,
				Execute: func(ctx context.Context, pc *agent.ProcessContext) (agent.ActionStatus, error) {
					draft, _ := pc.Blackboard.Get("draft").(string)
					if strings.TrimSpace(draft) == "" {
						return agent.ActionFailed, fmt.Errorf("nothing to review")
					}
					pc.Blackboard.SetCondition("reportReviewed", true)
					return agent.ActionSucceeded, nil
				},
			},
		},
		Goals: []goap.Goal{
			goap.NewGoal("reviewed report", goap.WorldState{"reportReviewed": goap.True}, 50),
		},
	}
}
