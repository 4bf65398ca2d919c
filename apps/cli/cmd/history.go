package cmd

import (
	"strconv"

	"github.com/abdul-hamid-achik/spag/packages/output"
	"github.com/spf13/cobra"
)

var historyJSONFlag bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past requests",
	Long: `List every recorded request, oldest first. Indices are assigned in
order and never reused, even after old entries are pruned.

Examples:
  spag history
  spag history show 3
  spag history show 3 --json`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := cliRunner.History().List()
		if err != nil {
			return err
		}
		newFormatter(cmd.OutOrStdout()).FormatHistory(entries)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <index>",
	Short: "Show one past request and its response",
	Long: `Show one past request and its response by history index.

Indexes start at 0. An argument starting with "-" is read as a flag, so a
negative index has to follow "--" and is then reported as out of range.

Examples:
  spag history show 3
  spag history show 3 --json`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return usageError("history index %q is not a number", args[0])
		}
		entry, err := cliRunner.History().Get(index)
		if err != nil {
			return err
		}

		formatter := newFormatter(cmd.OutOrStdout())
		if historyJSONFlag {
			formatter = output.NewJSONFormatter(output.JSONWithWriter(cmd.OutOrStdout()))
		}
		formatter.FormatEntry(entry)
		return nil
	},
}

func init() {
	historyShowCmd.Flags().BoolVar(&historyJSONFlag, "json", false, "Print the entry as JSON")
	historyCmd.AddCommand(historyShowCmd)
}
