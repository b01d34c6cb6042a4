package main

import (
	"fmt"
	"os"
	"time"

	"pigeon/internal/config"
	"pigeon/internal/schedule"

	"github.com/spf13/cobra"
)

var (
	checkAt       string
	checkTimezone string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Inspect schedule documents",
}

var scheduleCheckCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Validate a schedule document",
	Long: `Validate a schedule document without starting the bot.

With --at, also list the actions that would be posted at that time.

Exit codes:
  0 - Schedule is valid
  1 - Schedule has errors`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		actions, err := config.ParseSchedule(data)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ %s is valid (%d actions)\n", args[0], len(actions))
		for _, action := range actions {
			fmt.Fprintf(out, "  - %s: %q -> %s\n", action.Name, action.Expression, action.Channel)
		}

		if checkAt == "" {
			return nil
		}
		location, err := time.LoadLocation(checkTimezone)
		if err != nil {
			return err
		}
		at, err := time.Parse(time.RFC3339, checkAt)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}

		due := schedule.NewBook(location, actions).Due(at)
		fmt.Fprintf(out, "\nDue at %s (%d):\n", at.In(location).Format(time.RFC3339), len(due))
		for _, action := range due {
			fmt.Fprintf(out, "  - %s\n", action.Name)
		}
		return nil
	},
}

func init() {
	scheduleCheckCmd.Flags().StringVar(&checkAt, "at", "", "List actions due at this RFC 3339 time")
	scheduleCheckCmd.Flags().StringVar(&checkTimezone, "timezone", "UTC", "Time zone to evaluate --at in")
	scheduleCmd.AddCommand(scheduleCheckCmd)
}
