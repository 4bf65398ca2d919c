package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/spf13/cobra"
)

var (
	envNameFlag    string
	envHeaderFlags []string
	everythingFlag bool
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Manage environments",
	Long: `Manage named environments. An environment holds an endpoint, variables
and default headers. At most one environment is active; requests use it
unless --env names another.`,
}

var envSetCmd = &cobra.Command{
	Use:   "set (<key> <value>)... [-H <header>]...",
	Short: "Set variables and default headers",
	Long: `Set variables in an environment, creating it if needed. The key
"endpoint" sets the base URL. Without --env the active environment is
changed, or "default" when none is active.

Examples:
  spag env set endpoint http://localhost:5000
  spag env set id 42 user alice
  spag env set -H "Authorization: Bearer {{token}}"
  spag env set --env staging endpoint https://staging.example.com`,
	RunE: envSetCommand,
}

var envShowCmd = &cobra.Command{
	Use:   "show [<environment>]",
	Short: "Show an environment",
	Args:  usageArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		out, err := cliRunner.Registry().Show(name)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List environments",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		listing, err := cliRunner.Registry().List()
		if err != nil {
			return err
		}
		newFormatter(cmd.OutOrStdout()).FormatEnvironments(listing)
		return nil
	},
}

var envActivateCmd = &cobra.Command{
	Use:   "activate <name>",
	Short: "Make an environment the active one",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cliRunner.Registry().Activate(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Activated: %s\n", args[0])
		return nil
	},
}

var envDeactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Leave no environment active",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cliRunner.Registry().Deactivate()
	},
}

var envUnsetCmd = &cobra.Command{
	Use:   "unset [<key>] [--everything]",
	Short: "Remove a variable, or a whole environment",
	Long: `Remove a variable from an environment. A key naming a default header
removes the header too. With --everything the environment itself is deleted.`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: envUnsetCommand,
}

func init() {
	envSetCmd.Flags().StringArrayVarP(&envHeaderFlags, "header", "H", nil, "Default header \"Name: Value\" (repeatable)")

	for _, c := range []*cobra.Command{envSetCmd, envUnsetCmd} {
		c.Flags().StringVar(&envNameFlag, "env", getEnvString("SPAG_ENV", ""), "Environment to change instead of the active one (env: SPAG_ENV)")
	}
	envUnsetCmd.Flags().BoolVar(&everythingFlag, "everything", false, "Delete the whole environment")

	envCmd.AddCommand(envSetCmd)
	envCmd.AddCommand(envShowCmd)
	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envActivateCmd)
	envCmd.AddCommand(envDeactivateCmd)
	envCmd.AddCommand(envUnsetCmd)
}

func envSetCommand(cmd *cobra.Command, args []string) error {
	if len(args)%2 != 0 {
		return usageError("env set takes key value pairs, got %d arguments", len(args))
	}
	if len(args) == 0 && len(envHeaderFlags) == 0 {
		return usageError("nothing to set, pass key value pairs or -H")
	}
	headers, err := request.ParseHeaders(envHeaderFlags)
	if err != nil {
		return err
	}

	registry := cliRunner.Registry()
	name, err := registry.Target(envNameFlag)
	if err != nil {
		return err
	}
	for i := 0; i < len(args); i += 2 {
		if err := registry.Set(name, args[i], args[i+1]); err != nil {
			return err
		}
	}
	for _, h := range headers {
		if err := registry.SetHeader(name, h); err != nil {
			return err
		}
	}
	return nil
}

func envUnsetCommand(cmd *cobra.Command, args []string) error {
	registry := cliRunner.Registry()
	name, err := registry.Target(envNameFlag)
	if err != nil {
		return err
	}
	if everythingFlag {
		if len(args) > 0 {
			return usageError("--everything takes no key")
		}
		return registry.Clear(name)
	}
	if len(args) == 0 {
		return usageError("env unset needs a key, or --everything")
	}
	return registry.Unset(name, args[0])
}
