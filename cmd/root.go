package main

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	dataDir    string
	ordering   string
	verbose    bool
	noColor    bool
)

func buildRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "initiative",
		Short: "Track combat encounters and keep combatant names unique",
		Long: `initiative tracks tabletop combat encounters.

Every combatant joining a combat gets a name no other combatant in that
combat has. When the requested name is taken, a number is appended:
"Goblin", "Goblin 1", "Goblin 2", ...

Commands:
  resolve   Show the name a new combatant would receive
  combat    Create, list, show and delete combats
  join      Add combatants to a combat
  leave     Remove a combatant from a combat
  roster    Import or export a combat roster file
  history   Show the journal of a combat

Examples:
  # Preview a name without touching storage
  initiative resolve Goblin Goblin "Goblin 1"

  # Start an encounter and add three goblins
  initiative combat new "Ambush at the ford"
  initiative join <combat-id> Goblin --count 3 --hp 7

  # Show turn order
  initiative combat show <combat-id>

Configuration:
  Settings are read from --config (YAML), then INITIATIVE_* environment
  variables, then flags.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the user config dir)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding the combat database and journal")
	cmd.PersistentFlags().StringVar(&ordering, "ordering", "", "Name ordering: numeric or lexicographic")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
