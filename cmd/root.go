package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mcal application
var rootCmd = &cobra.Command{
	Use:   "mcal",
	Short: "Aggregates calendars from multiple Google accounts into one view",
	Long: `mcal merges events from any number of independently authenticated
Google Calendar accounts into one chronologically ordered agenda.

Register accounts with "mcal account add", then query them together:
  mcal agenda
  mcal search standup
  mcal calendars`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcal version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newAccountCmd())
	rootCmd.AddCommand(newAgendaCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newCalendarsCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newQuickCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newExportCmd())
}
