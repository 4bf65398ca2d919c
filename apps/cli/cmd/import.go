package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/import/curl"
	"github.com/abdul-hamid-achik/spag/packages/store"
	"github.com/spf13/cobra"
)

var (
	importFileFlag     string
	importNameFlag     string
	importRelativeFlag bool
	importForceFlag    bool
)

var requestImportCmd = &cobra.Command{
	Use:   "import [<curl command>...]",
	Short: "Create request files from curl commands",
	Long: `Create request files from curl commands, either given as arguments or
read from a file with one command per line (continued with a trailing
backslash). Files are written to the request directory and named after the
method and path, e.g. post_users.yml.

Examples:
  spag request import -- curl -X POST https://api.example.com/users -d '{"name":"John"}'
  spag request import --name list_users "curl https://api.example.com/users"
  spag request import --file commands.sh --relative`,
	RunE: importCommand,
}

func init() {
	requestImportCmd.Flags().StringVar(&importFileFlag, "file", "", "Read curl commands from this file")
	requestImportCmd.Flags().StringVar(&importNameFlag, "name", "", "Request file name, for a single command")
	requestImportCmd.Flags().BoolVar(&importRelativeFlag, "relative", false, "Drop scheme and host so the environment's endpoint is used")
	requestImportCmd.Flags().BoolVarP(&importForceFlag, "force", "f", false, "Overwrite existing request files")
	requestImportCmd.Flags().StringVar(&requestDirFlag, "dir", getEnvString("SPAG_REQUEST_DIR", ""), "Directory to write request files to (env: SPAG_REQUEST_DIR)")
	requestCmd.AddCommand(requestImportCmd)
}

func importCommand(cmd *cobra.Command, args []string) error {
	if (importFileFlag == "") == (len(args) == 0) {
		return usageError("pass either a curl command or --file")
	}

	converter := curl.NewConverter(curl.WithEndpoint(!importRelativeFlag))
	var (
		converted []*curl.Converted
		err       error
	)
	if importFileFlag != "" {
		converted, err = converter.ConvertFile(importFileFlag)
	} else {
		// A single argument is a whole command line the user quoted.
		line := args[0]
		if len(args) > 1 {
			line = shellJoin(args)
		}
		var conv *curl.Converted
		conv, err = converter.Convert(line)
		converted = []*curl.Converted{conv}
	}
	if err != nil {
		return err
	}

	if importNameFlag != "" {
		if len(converted) != 1 {
			return usageError("--name needs exactly one command, got %d", len(converted))
		}
		converted[0].Name = importNameFlag
	}

	dir := requestDir()
	for _, conv := range converted {
		path := filepath.Join(dir, store.EnsureYAMLExtension(conv.Name))
		if _, err := os.Stat(path); err == nil && !importForceFlag {
			return usageError("file already exists: %s (use --force to overwrite)", path)
		}
		if err := request.SaveFile(path, conv.Template); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", path)
		if conv.Insecure {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: -k is not stored, pass --insecure when sending\n", conv.Name)
		}
	}
	return nil
}

// shellJoin rebuilds a command line from arguments the shell has already
// split, quoting those that would not survive another split.
func shellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		if arg != "" && !strings.ContainsAny(arg, " \t'\"\\") {
			quoted[i] = arg
			continue
		}
		quoted[i] = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}
