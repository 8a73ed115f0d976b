package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the qtip release version.
const Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the qtip version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("qtip " + Version)
	},
}
