package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		newFormatter(cmd.OutOrStdout()).FormatHeader(version)
		if !strings.EqualFold(outputFlag, "json") {
			fmt.Fprintf(cmd.OutOrStdout(), "Built: %s\n", buildTime)
		}
	},
}
