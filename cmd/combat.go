package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"initiative/pkg/usecase"
)

func buildCombatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combat",
		Short: "Create, list, show and delete combats",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "new <name...>",
			Short: "Create an empty combat",
			Long: `Creates an empty combat and prints its ID.

Examples:
  initiative combat new "Ambush at the ford"
  initiative combat new Tavern brawl`,
			Args: cobra.MinimumNArgs(1),
			RunE: runCombatNew,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List stored combats",
			Args:  cobra.NoArgs,
			RunE:  runCombatList,
		},
		&cobra.Command{
			Use:   "show <combat-id>",
			Short: "Show a combat in turn order",
			Long: `Shows the combatants of a combat ordered by initiative, highest first.
Combatants with equal initiative keep the order in which they joined.`,
			Args: cobra.ExactArgs(1),
			RunE: runCombatShow,
		},
		&cobra.Command{
			Use:   "delete <combat-id>",
			Short: "Delete a combat and all its combatants",
			Args:  cobra.ExactArgs(1),
			RunE:  runCombatDelete,
		},
	)

	return cmd
}

func runCombatNew(_ *cobra.Command, args []string) error {
	return withService(func(service *usecase.Service) error {
		c, err := service.CreateCombat(strings.Join(args, " "))
		if err != nil {
			return err
		}

		printCommandHeader("NEW", c.ID)
		fmt.Printf("Name:    %s\n", c.Name)

		return nil
	})
}

func runCombatList(_ *cobra.Command, _ []string) error {
	return withService(func(service *usecase.Service) error {
		combats, err := service.ListCombats()
		if err != nil {
			return err
		}

		if len(combats) == 0 {
			fmt.Println("No combats.")
			return nil
		}

		printCombats(combats)
		return nil
	})
}

func runCombatShow(_ *cobra.Command, args []string) error {
	return withService(func(service *usecase.Service) error {
		c, err := service.ShowCombat(args[0])
		if err != nil {
			return describeError(err)
		}

		printCommandHeader("SHOW", c.ID)
		fmt.Printf("Name:    %s\n", c.Name)
		fmt.Printf("Round:   %d\n", c.Round)
		fmt.Println()

		if len(c.Combatants) == 0 {
			fmt.Println("No combatants.")
			return nil
		}

		printTurnOrder(c)
		return nil
	})
}

func runCombatDelete(_ *cobra.Command, args []string) error {
	return withService(func(service *usecase.Service) error {
		if err := service.DeleteCombat(args[0]); err != nil {
			return describeError(err)
		}

		printCommandHeader("DELETE", args[0])
		return nil
	})
}
