package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"initiative/pkg/usecase"
)

func buildLeaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <combat-id> <combatant-id>",
		Short: "Remove a combatant from a combat",
		Long: `Removes a combatant from a combat. Its name becomes free again and may
be handed to the next combatant that asks for it.

Examples:
  initiative leave <combat-id> <combatant-id>`,
		Args: cobra.ExactArgs(2),
		RunE: runLeave,
	}
}

func runLeave(_ *cobra.Command, args []string) error {
	return withService(func(service *usecase.Service) error {
		removed, err := service.Leave(args[0], args[1])
		if err != nil {
			return describeError(err)
		}

		printCommandHeader("LEAVE", args[0])
		fmt.Printf("LEAVE: %s\n", removed.Name)
		if verbose {
			fmt.Printf("   ID: %s\n", removed.ID)
		}

		return nil
	})
}
