package main

import (
	"fmt"
	"time"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"initiative/pkg/journal"
	"initiative/pkg/usecase"
)

func buildHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history <combat-id>",
		Short: "Show the journal of a combat, newest first",
		Long: `Shows every recorded change of a combat: creation, joins and
departures. Joins that were renamed show the name that was asked for.

Examples:
  initiative history <combat-id>`,
		Args: cobra.ExactArgs(1),
		RunE: runHistory,
	}
}

func runHistory(_ *cobra.Command, args []string) error {
	return withService(func(service *usecase.Service) error {
		entries, err := service.History(args[0])
		if err != nil {
			return err
		}

		printCommandHeader("HISTORY", args[0])
		fmt.Println()

		if len(entries) == 0 {
			fmt.Println("No journal entries.")
			return nil
		}

		for _, entry := range entries {
			printJournalEntry(entry)
		}

		return nil
	})
}

func printJournalEntry(entry journal.Entry) {
	ts := entry.Timestamp.Local().Format(time.DateTime)
	switch entry.Type {
	case journal.TypeJoin:
		if entry.Renamed() {
			fmt.Printf("%s JOIN:   %s (asked %s)\n", ts, color.Yellow.Sprint(entry.Assigned), entry.Requested)
			return
		}
		fmt.Printf("%s JOIN:   %s\n", ts, entry.Assigned)
	case journal.TypeLeave:
		fmt.Printf("%s LEAVE:  %s\n", ts, entry.Assigned)
	case journal.TypeCreate:
		fmt.Printf("%s CREATE\n", ts)
	case journal.TypeDelete:
		fmt.Printf("%s DELETE\n", ts)
	default:
		fmt.Printf("%s %s\n", ts, entry.Type)
	}
}
