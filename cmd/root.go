package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the calagent application
var rootCmd = &cobra.Command{
	Use:   "calagent [query...]",
	Short: "Natural-language assistant for Google Calendar",
	Long: `calagent translates natural-language requests into Google Calendar
operations, mediated by a language model that decides which calendar
tools to invoke.

With no arguments it starts an interactive session; with arguments it
answers the joined query once and exits.`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runChat,
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
	rootCmd.SetVersionTemplate(`{{printf "calagent version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newAuthCmd())
}
