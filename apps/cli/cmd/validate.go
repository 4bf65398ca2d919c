package cmd

import (
	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/spf13/cobra"
)

var requestValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate request files without sending them",
	Long: `Validate request files for structural errors without sending them.

Examples:
  spag request validate create_item
  spag request validate requests/*.yml`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	formatter := newFormatter(cmd.OutOrStdout())

	var (
		firstErr error
		invalid  int
	)
	for _, arg := range args {
		path, err := cliRunner.FindRequest(arg, requestDirFlag)
		if err == nil {
			_, err = request.LoadFile(path)
		} else {
			path = arg
		}
		formatter.FormatValidation(path, err)
		if err == nil {
			continue
		}
		invalid++
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return errdef.New(errdef.CodeOf(firstErr), "%d of %d request files invalid", invalid, len(args))
	}
	return nil
}
