package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd is the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the fridgectl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(formatVersion())
	},
}
