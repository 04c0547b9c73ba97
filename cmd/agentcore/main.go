package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "agentcore",
	Short: "Personal assistant core: natural-language capture of schedules, tasks, and notes",
	Long: `agentcore interprets natural-language commands (Korean or English),
routes them to the right action — calendar event, task, note, schedule
query, or daily briefing — and persists every record durably, falling
back to a local log when the primary store is unavailable.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		startCmd,
		stopCmd,
		statusCmd,
		sayCmd,
		activityCmd,
		briefingCmd,
		scheduleCmd,
		importCmd,
		configCmd,
	)
}

func main() {
	// A .env next to the binary can seed AGENTCORE_* variables.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
