package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pigeon",
	Short: "pigeon is a webhook driven Slack bot",
	Long: `pigeon receives signed Slack callbacks (events, slash commands and
interactive block actions), verifies them and dispatches them one at a time
to its handlers. A timer posts scheduled messages from a YAML schedule
document.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(versionCmd)
}
