package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/importkit/pkg/importkit/cli"
	"github.com/arthur-debert/importkit/pkg/importkit/config"
	"github.com/arthur-debert/importkit/pkg/importkit/core"
	"github.com/arthur-debert/importkit/pkg/importkit/logging"
)

// reportedError is an error already shown to the operator through the console.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// app holds the state shared by the commands of one invocation.
type app struct {
	envFile  string
	logLevel string
	quiet    bool
	noColor  bool
	debug    bool

	termOpts []cli.Option

	settings config.Settings
	logger   zerolog.Logger
	console  *logging.Console
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd(termOpts ...cli.Option) *cobra.Command {
	a := &app{termOpts: termOpts, logger: logging.DefaultLogger()}

	cmd := &cobra.Command{
		Use:   "importkit",
		Short: "Run data import pipelines",
		Long: `importkit imports records from JSON Lines and CSV files into JSON Lines files
or PostgreSQL tables. A pipeline file declares the import stages, their field
mappings and the order in which they depend on each other.

` + config.EnvHelp(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", "env file to load (default: .env when present)")
	flags.StringVar(&a.logLevel, "log-level", "", "diagnostic log level (overrides IMPORTKIT_LOG_LEVEL)")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "only show errors, warnings and results")
	flags.BoolVar(&a.noColor, "no-color", false, "disable coloured output")
	flags.BoolVar(&a.debug, "debug", false, "show debug output")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRunCmd(a))
	cmd.AddCommand(newValidateCmd(a))

	return cmd
}

// setup loads settings and builds the loggers. Flags take precedence over the
// environment.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	var envFiles []string
	if a.envFile != "" {
		envFiles = append(envFiles, a.envFile)
	}
	settings, err := config.LoadSettings(envFiles...)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		settings.LogLevel = a.logLevel
	}
	if flags.Changed("quiet") {
		settings.Quiet = a.quiet
	}
	if flags.Changed("no-color") {
		settings.NoColor = a.noColor
	}
	if flags.Changed("debug") {
		settings.Debug = a.debug
	}
	a.settings = settings

	level, err := logging.LogLevelFromString(settings.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
	}
	if settings.Debug {
		level = zerolog.DebugLevel
	}
	a.logger = logging.NewLogger(cmd.ErrOrStderr(), level)

	opts := []cli.Option{cli.WithQuiet(settings.Quiet), cli.WithDebug(settings.Debug)}
	if settings.NoColor {
		opts = append(opts, cli.WithColor(false))
	}
	opts = append(opts, a.termOpts...)
	a.console = logging.NewConsole(cli.NewTerminal(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts...))

	a.logger.Debug().
		Str("log_level", settings.LogLevel).
		Bool("quiet", settings.Quiet).
		Msg("settings loaded")
	return nil
}

// diagnostics returns the zerolog logger as a leveled logger.
func (a *app) diagnostics() core.LeveledLogger {
	return logging.NewZerolog(a.logger)
}

// fail reports err through the console fatal path.
func (a *app) fail(err error) error {
	a.console.Error(err.Error(), core.Context{"error": err})
	return &reportedError{err: err}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  `Print the version number of importkit`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "importkit version %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
