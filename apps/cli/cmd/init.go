package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/spag/packages/core/config"
	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/abdul-hamid-achik/spag/packages/store"
	"github.com/spf13/cobra"
)

var forceInit bool

const exampleRequestDir = "requests"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new spag project",
	Long: `Initialize a new spag project in the current directory.

This creates:
  - .spag.config.json      - Configuration file
  - .spag/                 - State directory for environments and history
  - requests/get_item.yml  - Example request file

Examples:
  spag init
  spag init --force`,
	Args: usageArgs(cobra.NoArgs),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return errdef.Wrap(errdef.CodeDocumentIO, err, "working directory")
	}

	configFile := filepath.Join(cwd, config.ConfigFilenames[0])
	exampleFile := filepath.Join(cwd, exampleRequestDir, "get_item.yml")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return usageError("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.StateDir = cliConfig.StateDir
	cfg.RequestDir = exampleRequestDir
	if err := cfg.SaveConfig(configFile); err != nil {
		return errdef.Wrap(errdef.CodeDocumentIO, err, "create config file")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	st := store.New(cfg.StateDir)
	if err := st.EnsureDir("."); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", st.Root())

	example := &request.Template{
		Method:   request.MethodGet,
		Resource: "/items/{{id}}",
		Headers:  request.Headers{{Name: "Accept", Value: "application/json"}},
	}
	if err := request.SaveFile(exampleFile, example); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nspag project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'spag env set endpoint http://localhost:5000 id 1' and then 'spag request get_item'.\n")

	return nil
}
