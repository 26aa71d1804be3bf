package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/praxis/internal/goap"
)

// This demo runs the planner over the classic crime domain: a small
// economy of drugs, guns and bribes where the cheapest route to a clean
// getaway is not the obvious one. No LLMs involved, planning only.

func main() {
	log.SetLevel(log.InfoLevel)

	fmt.Println()
	fmt.Println("🎭 GOAP Demo: The Crime Domain")
	fmt.Println()

	start := goap.NewWorldState()
	start["hasDrugs"] = goap.False
	start["hasGun"] = goap.False
	start["hasMoney"] = goap.False
	start["copBribed"] = goap.False
	start["enemyDead"] = goap.False

	actions := []goap.Action{
		goap.NewAction("Cook drugs", goap.WorldState{"hasDrugs": goap.False},
			goap.WorldState{"hasDrugs": goap.True}, 1.0),
		goap.NewAction("Sell drugs", goap.WorldState{"hasDrugs": goap.True},
			goap.WorldState{"hasDrugs": goap.False, "hasMoney": goap.True}, 1.5),
		goap.NewAction("Buy gun", goap.WorldState{"hasMoney": goap.True},
			goap.WorldState{"hasGun": goap.True, "hasMoney": goap.False}, 1.0),
		goap.NewAction("Shoot enemy", goap.WorldState{"hasGun": goap.True},
			goap.WorldState{"enemyDead": goap.True}, 2.0),
		goap.NewAction("Bribe cop", goap.WorldState{"hasMoney": goap.True},
			goap.WorldState{"copBribed": goap.True, "hasMoney": goap.False}, 1.8),
	}

	goal := goap.NewGoal("clean getaway", goap.WorldState{
		"enemyDead": goap.True,
		"copBribed": goap.True,
	}, 100)

	planner := goap.NewPlanner(&goap.StaticDeterminer{State: start})
	plan, err := planner.PlanToGoal(context.Background(), actions, goal)
	if err != nil {
		log.Error("Planning failed", "error", err)
		os.Exit(1)
	}
	if plan == nil {
		log.Error("No plan reaches the goal")
		os.Exit(1)
	}

	fmt.Printf("Goal: %s (value %.0f)\n\n", goal.Name, goal.Value)
	state := start.Clone()
	for i, a := range plan.Actions {
		fmt.Printf("  %d. %-12s (cost %.1f)\n", i+1, a.Name, a.Cost)
		state = state.Apply(a.Effects)
	}
	fmt.Printf("\nTotal cost: %.1f, net value: %.1f\n", plan.Cost(), plan.NetValue())
	fmt.Printf("Final state: %s\n", state)
	fmt.Println()
}
