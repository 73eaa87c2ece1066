package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"initiative/pkg/encounter"
	"initiative/pkg/usecase"
)

var (
	joinCount      int
	joinInitiative int
	joinHitPoints  int
)

func buildJoinCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join <combat-id> <name>",
		Short: "Add combatants to a combat",
		Long: `Adds one or more combatants to a combat. Each combatant receives a name
no other combatant in the combat has:
  - The requested name is used when it is free
  - Otherwise the next free number is appended ("Goblin 1", "Goblin 2", ...)
  - Renamed combatants are highlighted

Examples:
  initiative join <combat-id> Goblin                    # Goblin
  initiative join <combat-id> Goblin --count 3 --hp 7   # Goblin, Goblin 1, Goblin 2
  initiative join <combat-id> "Orc Chief" --initiative 14`,
		Args: cobra.ExactArgs(2),
		RunE: runJoin,
	}

	cmd.Flags().IntVarP(&joinCount, "count", "n", 1, "Number of combatants to add")
	cmd.Flags().IntVarP(&joinInitiative, "initiative", "i", 0, "Initiative roll")
	cmd.Flags().IntVar(&joinHitPoints, "hp", 0, "Hit points")

	return cmd
}

func runJoin(_ *cobra.Command, args []string) error {
	if joinCount < 1 || joinCount > encounter.MaxJoinCount {
		return fmt.Errorf("--count must be between 1 and %d", encounter.MaxJoinCount)
	}

	return withService(func(service *usecase.Service) error {
		execution, err := service.Join(usecase.JoinRequest{
			CombatID:   args[0],
			Name:       args[1],
			Initiative: joinInitiative,
			HitPoints:  joinHitPoints,
			Count:      joinCount,
		})
		if err != nil {
			return describeError(err)
		}

		printCommandHeader("JOIN", execution.CombatID)
		printJoined(execution.Joined)
		printJoinSummary(execution)

		return nil
	})
}
