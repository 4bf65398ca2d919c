package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/spag/packages/core/config"
	"github.com/abdul-hamid-achik/spag/packages/core/env"
	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/core/runner"
	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/abdul-hamid-achik/spag/packages/history"
	"github.com/abdul-hamid-achik/spag/packages/logging"
	"github.com/abdul-hamid-achik/spag/packages/output"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag   string
	stateDirFlag string
	logLevelFlag string
	logFileFlag  string
	noColorFlag  bool
	outputFlag   string
	timeoutFlag  time.Duration
	proxyFlag    string
	insecureFlag bool
)

// Set up by the root command before any subcommand runs.
var (
	cliConfig *config.Config
	cliRunner *runner.Runner
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "spag",
	Short: "A command-line HTTP client with environments and history",
	Long: `spag sends HTTP requests from the command line.

Keep base URLs, variables and default headers in named environments, write
{{placeholders}} in resources, bodies and headers, and look back at every
request you made.

Examples:
  spag env set endpoint http://localhost:5000 id 42
  spag get /items/{{id}}
  spag post /items -H "Content-Type: application/json" -d '{"name":"widget"}'
  spag request create_item
  spag history`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Formatter renders command results
type Formatter interface {
	FormatResult(result *runner.Result)
	FormatRequest(t *request.Template)
	FormatHistory(entries iter.Seq[history.Summary])
	FormatEntry(e *history.Entry)
	FormatEnvironments(listing []env.Listing)
	FormatValidation(path string, err error)
	FormatError(err error)
	FormatHeader(version string)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFlag, "config", getEnvString("SPAG_CONFIG", ""), "Path to config file (env: SPAG_CONFIG)")
	pf.StringVar(&stateDirFlag, "state-dir", getEnvString("SPAG_STATE_DIR", ""), "Directory holding environments, history and remembered requests (env: SPAG_STATE_DIR)")
	pf.StringVar(&logLevelFlag, "log-level", getEnvString("SPAG_LOG_LEVEL", ""), "Diagnostic log level: trace, debug, info, warn, error (env: SPAG_LOG_LEVEL)")
	pf.StringVar(&logFileFlag, "log-file", getEnvString("SPAG_LOG_FILE", ""), "Also write diagnostics to this rotating log file (env: SPAG_LOG_FILE)")
	pf.BoolVar(&noColorFlag, "no-color", getEnvBool("SPAG_NO_COLOR", false), "Disable colored output (env: SPAG_NO_COLOR)")
	pf.StringVarP(&outputFlag, "output", "o", getEnvString("SPAG_OUTPUT", "console"), "Output format: console, json (env: SPAG_OUTPUT)")
	pf.DurationVar(&timeoutFlag, "timeout", getEnvDuration("SPAG_TIMEOUT", 0), "Request timeout, e.g. 30s (env: SPAG_TIMEOUT)")
	pf.StringVar(&proxyFlag, "proxy", getEnvString("SPAG_PROXY", ""), "Proxy URL for HTTP requests (env: SPAG_PROXY)")
	pf.BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("SPAG_INSECURE", false), "Disable SSL certificate validation (env: SPAG_INSECURE)")

	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return errdef.Wrap(errdef.CodeUsage, err, "%s", c.CommandPath())
	})

	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the CLI and exits with the status the outcome maps to.
func Execute(v, bt string) {
	version = v
	buildTime = bt
	runner.UserAgent = "spag/" + v

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	c, err := rootCmd.ExecuteContextC(ctx)
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
	if err == nil {
		return ExitSuccess
	}

	code := exitCode(err)
	var status *statusError
	if !errors.As(err, &status) {
		newFormatter(stderr).FormatError(err)
	}
	if code == ExitUsageError && c != nil {
		fmt.Fprint(stderr, c.UsageString())
	}
	return code
}

func setup(cmd *cobra.Command, args []string) error {
	switch strings.ToLower(outputFlag) {
	case "console", "json":
	default:
		return usageError("unknown output format %q, use console or json", outputFlag)
	}

	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return err
	}
	overrides := &config.Config{
		StateDir: stateDirFlag,
		LogLevel: logLevelFlag,
		LogFile:  logFileFlag,
		Proxy:    proxyFlag,
		Timeout:  int(timeoutFlag.Milliseconds()),
	}
	if noColorFlag {
		overrides.NoColor = config.BoolPtr(true)
	}
	if insecureFlag {
		overrides.ValidateSSL = config.BoolPtr(false)
	}
	cliConfig = fileConfig.Merge(overrides)

	closer, err := logging.Setup(logging.Options{
		Level:   cliConfig.LogLevel,
		File:    cliConfig.LogFile,
		Console: cmd.ErrOrStderr(),
		NoColor: cliConfig.GetNoColor(),
	})
	if err != nil {
		return errdef.Wrap(errdef.CodeUsage, err, "--log-level")
	}
	logCloser = closer

	cliRunner = runner.NewRunner(cliConfig)
	return nil
}

// newFormatter returns the formatter selected by --output, writing to w.
func newFormatter(w io.Writer, opts ...output.ConsoleOption) Formatter {
	if strings.EqualFold(outputFlag, "json") {
		return output.NewJSONFormatter(output.JSONWithWriter(w))
	}
	noColor := noColorFlag
	if cliConfig != nil {
		noColor = cliConfig.GetNoColor()
	}
	consoleOpts := append([]output.ConsoleOption{
		output.WithWriter(w),
		output.WithNoColor(noColor),
	}, opts...)
	return output.NewConsoleFormatter(consoleOpts...)
}

func usageError(format string, args ...any) error {
	return errdef.New(errdef.CodeUsage, format, args...)
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return errdef.Wrap(errdef.CodeUsage, err, "%s", cmd.CommandPath())
		}
		return nil
	}
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
