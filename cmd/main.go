package main

import (
	"os"
)

func main() {
	rootCmd := buildRootCommand()
	rootCmd.AddCommand(buildResolveCommand())
	rootCmd.AddCommand(buildCombatCommand())
	rootCmd.AddCommand(buildJoinCommand())
	rootCmd.AddCommand(buildLeaveCommand())
	rootCmd.AddCommand(buildRosterCommand())
	rootCmd.AddCommand(buildHistoryCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
