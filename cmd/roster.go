package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"initiative/pkg/roster"
	"initiative/pkg/usecase"
)

var (
	exportOutput string
	exportFormat string
)

func buildRosterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Import or export a combat roster file",
	}

	importCmd := &cobra.Command{
		Use:   "import <combat-id> <file>",
		Short: "Join every combatant listed in a roster file",
		Long: `Joins every combatant of a YAML or JSON roster file, in file order.
Names are resolved exactly as with 'join'. If any entry is invalid,
nothing is added.

Roster file:
  combatants:
    - name: Goblin
      count: 3
      hit_points: 7
    - name: Worg
      initiative: 13

Examples:
  initiative roster import <combat-id> ambush.yaml
  initiative roster import <combat-id> party.json`,
		Args: cobra.ExactArgs(2),
		RunE: runRosterImport,
	}

	exportCmd := &cobra.Command{
		Use:   "export <combat-id>",
		Short: "Write a combat's combatants as a roster file",
		Long: `Writes the combatants of a combat as a roster, one entry per combatant,
using their assigned names.

Examples:
  initiative roster export <combat-id>                   # YAML to stdout
  initiative roster export <combat-id> -o fight.json     # format from extension
  initiative roster export <combat-id> --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runRosterExport,
	}
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Output format: yaml or json")

	cmd.AddCommand(importCmd, exportCmd)

	return cmd
}

func runRosterImport(_ *cobra.Command, args []string) error {
	return withService(func(service *usecase.Service) error {
		execution, err := service.ImportRoster(usecase.ImportRequest{
			CombatID: args[0],
			Path:     args[1],
		})
		if err != nil {
			return describeError(err)
		}

		printCommandHeader("IMPORT", execution.CombatID)
		fmt.Printf("Roster:  %s\n", args[1])
		printJoined(execution.Joined)
		printJoinSummary(execution)

		return nil
	})
}

func runRosterExport(_ *cobra.Command, args []string) error {
	format, err := exportFormatFor(exportFormat, exportOutput)
	if err != nil {
		return err
	}

	return withService(func(service *usecase.Service) error {
		var out io.Writer = os.Stdout
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("cannot create roster file: %w", err)
			}
			defer f.Close()
			out = f
		}

		err := service.ExportRoster(usecase.ExportRequest{
			CombatID: args[0],
			Format:   format,
			Output:   out,
		})
		if err != nil {
			return describeError(err)
		}

		if exportOutput != "" {
			fmt.Printf("Exported: %s\n", exportOutput)
		}

		return nil
	})
}

// exportFormatFor picks the flag value, then the output extension, then YAML.
func exportFormatFor(flag, output string) (roster.Format, error) {
	if flag != "" {
		return roster.ParseFormat(flag)
	}
	if output != "" {
		return roster.FormatFromPath(output)
	}
	return roster.FormatYAML, nil
}
