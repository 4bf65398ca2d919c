package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/abdul-hamid-achik/spag/packages/core/resolver"
	"github.com/abdul-hamid-achik/spag/packages/core/runner"
	"github.com/abdul-hamid-achik/spag/packages/store"
	"github.com/spf13/cobra"
)

var requestCmd = &cobra.Command{
	Use:   "request <file>",
	Short: "Send a request saved in a request file",
	Long: `Send the request described by a YAML request file:

  method: POST
  resource: /items/{{id}}
  headers:
    Content-Type: application/json
  body: '{"name": "widget"}'

<file> is a path, or a name looked up below the request directory
(requestDir in the config, or --dir). Names may omit the extension and may be
qualified with parent directories when ambiguous, e.g. v1/create_item.

Examples:
  spag request create_item
  spag request v2/create_item -w id=7
  spag request ./requests/health.yml --dry-run`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: requestCommand,
}

var requestShowCmd = &cobra.Command{
	Use:   "show [<file>]",
	Short: "Show a request file, or list all of them",
	Args:  usageArgs(cobra.MaximumNArgs(1)),
	RunE:  requestShowCommand,
}

func init() {
	addSendFlags(requestCmd)
	for _, c := range []*cobra.Command{requestCmd, requestShowCmd, requestValidateCmd} {
		c.Flags().StringVar(&requestDirFlag, "dir", getEnvString("SPAG_REQUEST_DIR", ""), "Directory to look up request files in (env: SPAG_REQUEST_DIR)")
	}

	requestCmd.AddCommand(requestShowCmd)
	requestCmd.AddCommand(requestValidateCmd)
}

func requestCommand(cmd *cobra.Command, args []string) error {
	path, t, err := cliRunner.LoadRequest(args[0], requestDirFlag)
	if err != nil {
		return err
	}
	intent := resolver.Intent{
		Template: t,
		Endpoint: endpointFlag,
		Body:     dataFlag,
		HasBody:  cmd.Flags().Changed("data"),
	}
	return send(cmd, intent, runner.RequestName(path))
}

func requestShowCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		_, t, err := cliRunner.LoadRequest(args[0], requestDirFlag)
		if err != nil {
			return err
		}
		newFormatter(cmd.OutOrStdout()).FormatRequest(t)
		return nil
	}

	dir := requestDir()
	lookup, err := store.NewLookup(dir)
	if err != nil {
		return err
	}
	files := lookup.Files()
	if len(files) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No request files in %s\n", dir)
		return nil
	}
	for _, file := range files {
		fmt.Fprintln(cmd.OutOrStdout(), relativeTo(lookup.Dirs()[0], file))
	}
	return nil
}

func requestDir() string {
	if requestDirFlag != "" {
		return requestDirFlag
	}
	if cliConfig.RequestDir != "" {
		return cliConfig.RequestDir
	}
	return "."
}

func relativeTo(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
