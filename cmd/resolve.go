package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"initiative/pkg/encounter"
	"initiative/pkg/naming"
)

func buildResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <candidate> [sibling...]",
		Short: "Print the unique name a candidate would receive",
		Long: `Prints the name a new combatant would receive given the names already
present in its combat. Nothing is read from or written to storage.

Examples:
  initiative resolve Goblin                        # Goblin
  initiative resolve Goblin Goblin                 # Goblin 1
  initiative resolve Goblin Goblin "Goblin 3"      # Goblin 4
  initiative resolve --ordering lexicographic \
    Goblin Goblin "Goblin 9" "Goblin 10"           # Goblin 10`,
		Args: cobra.MinimumNArgs(1),
		RunE: runResolve,
	}
}

func runResolve(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	nameOrdering, err := cfg.NameOrdering()
	if err != nil {
		return err
	}

	candidate := encounter.NormalizeName(args[0])
	if candidate == "" {
		return fmt.Errorf("%w: candidate name is empty", encounter.ErrInvalidCombatant)
	}

	name := naming.New(nameOrdering).Resolve(candidate, args[1:])
	if verbose {
		fmt.Printf("Ordering: %s\n", nameOrdering)
		fmt.Printf("Siblings: %d\n", len(args)-1)
	}
	fmt.Println(name)

	return nil
}
