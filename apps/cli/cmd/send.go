package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/core/resolver"
	"github.com/abdul-hamid-achik/spag/packages/core/runner"
	"github.com/abdul-hamid-achik/spag/packages/output"
	"github.com/abdul-hamid-achik/spag/packages/store"
	"github.com/spf13/cobra"
)

// Flags shared by the method commands and request. Only one of them runs per
// invocation.
var (
	headerFlags     []string
	dataFlag        string
	endpointFlag    string
	withFlags       []string
	envFileFlag     string
	requestEnvFlag  string
	saveFlag        string
	dryRunFlag      bool
	showHeadersFlag bool
	failFlag        bool
	prettyFlag      bool
	requestDirFlag  string
)

func addSendFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringArrayVarP(&headerFlags, "header", "H", nil, "Header \"Name: Value\", overrides environment and file headers (repeatable)")
	f.StringVarP(&dataFlag, "data", "d", "", "Request body")
	f.StringVarP(&endpointFlag, "endpoint", "e", "", "Endpoint to send to instead of the environment's")
	f.StringArrayVarP(&withFlags, "with", "w", nil, "Variable key=value for this request only (repeatable)")
	f.StringVar(&envFileFlag, "env-file", getEnvString("SPAG_ENV_FILE", ""), "Path to .env file with extra variables (env: SPAG_ENV_FILE)")
	f.StringVar(&requestEnvFlag, "env", getEnvString("SPAG_ENV", ""), "Environment to use instead of the active one (env: SPAG_ENV)")
	f.BoolVar(&dryRunFlag, "dry-run", false, "Print the resolved request without sending it")
	f.BoolVarP(&showHeadersFlag, "show-headers", "i", getEnvBool("SPAG_SHOW_HEADERS", false), "Print the status line and response headers (env: SPAG_SHOW_HEADERS)")
	f.BoolVarP(&failFlag, "fail", "f", false, "Exit with status 22 on an HTTP error status")
	f.BoolVar(&prettyFlag, "pretty", getEnvBool("SPAG_PRETTY", false), "Indent JSON response bodies (env: SPAG_PRETTY)")
}

var methodCmds = []*cobra.Command{
	newMethodCommand(request.MethodGet),
	newMethodCommand(request.MethodPost),
	newMethodCommand(request.MethodPut),
	newMethodCommand(request.MethodPatch),
	newMethodCommand(request.MethodDelete),
}

func newMethodCommand(method request.Method) *cobra.Command {
	name := strings.ToLower(method.String())
	c := &cobra.Command{
		Use:   name + " <resource>",
		Short: fmt.Sprintf("Send a %s request", method),
		Long: fmt.Sprintf(`Send a %[1]s request to <resource> on the active environment's endpoint.
Placeholders such as {{id}} are filled from the environment.

Examples:
  spag %[2]s /items/{{id}}
  spag %[2]s /items -e http://localhost:5000 -w id=7
  spag %[2]s https://example.com/health --show-headers`, method, name),
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return methodCommand(cmd, method, args[0])
		},
	}
	addSendFlags(c)
	c.Flags().StringVar(&saveFlag, "save", "", "Save the request as a request file")
	return c
}

func init() {
	for _, c := range methodCmds {
		rootCmd.AddCommand(c)
	}
}

func methodCommand(cmd *cobra.Command, method request.Method, resource string) error {
	intent := resolver.Intent{
		Method:   method,
		Resource: resource,
		Endpoint: endpointFlag,
		Body:     dataFlag,
		HasBody:  cmd.Flags().Changed("data"),
	}
	if err := send(cmd, intent, ""); err != nil {
		return err
	}
	if saveFlag == "" {
		return nil
	}
	return saveRequest(cmd, method, resource)
}

// saveRequest writes the request as typed, placeholders included, so it can
// be sent again with spag request.
func saveRequest(cmd *cobra.Command, method request.Method, resource string) error {
	headers, err := request.ParseHeaders(headerFlags)
	if err != nil {
		return err
	}
	t := &request.Template{
		Method:   method,
		Endpoint: endpointFlag,
		Resource: resource,
		Headers:  headers,
		Body:     dataFlag,
	}
	path := store.EnsureYAMLExtension(saveFlag)
	if !filepath.IsAbs(path) && filepath.Dir(path) == "." {
		path = filepath.Join(cliConfig.RequestDir, path)
	}
	if err := request.SaveFile(path, t); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved: %s\n", path)
	return nil
}

func send(cmd *cobra.Command, intent resolver.Intent, rememberAs string) error {
	with, err := parseWith(withFlags)
	if err != nil {
		return err
	}

	result, err := cliRunner.Run(cmd.Context(), runner.Options{
		Intent:      intent,
		Headers:     headerFlags,
		Environment: requestEnvFlag,
		EnvFile:     envFileFlag,
		With:        with,
		RememberAs:  rememberAs,
		DryRun:      dryRunFlag,
	})
	if err != nil {
		return err
	}

	newFormatter(cmd.OutOrStdout(),
		output.WithVerbose(showHeadersFlag),
		output.WithPretty(prettyFlag),
	).FormatResult(result)

	if failFlag && result.Response != nil && result.Response.StatusCode >= 400 {
		return &statusError{status: result.Response.Status}
	}
	return nil
}

// parseWith turns key=value pairs into variables. A repeated key keeps its
// last value.
func parseWith(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, usageError("--with %q is not key=value", pair)
		}
		vars[key] = value
	}
	return vars, nil
}
