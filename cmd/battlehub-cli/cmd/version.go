package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set via -ldflags "-X ...cmd.version=..." at release build time;
// left at "dev" for local builds.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the battlehub-cli version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}
