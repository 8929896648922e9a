package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "battlehub-cli",
	Short: "Operator tooling for the battlehub engine",
	Long: `battlehub-cli is a debugging and operations tool for the battlehub
battle server: listing live rooms against a running instance's debug HTTP
API, and replaying scripted battle scenarios headlessly for manual
inspection of the resulting event stream.`,
}

// Execute runs the root command, exiting the process on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(roomsCmd)
	rootCmd.AddCommand(battleCmd)
}
