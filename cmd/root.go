package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/SergeiSkv/ruletest/rules"
	"github.com/SergeiSkv/ruletest/version"
)

var (
	jsonOutput bool
	configPath string
	verbose    bool
	logLevel   string
	noColor    bool
	jobs       int
	strategy   string
	force      bool
	logger     *slog.Logger
	appFs      = afero.NewOsFs()
)

var rootCmd = &cobra.Command{
	Use:   "ruletest [paths...]",
	Short: "ruletest - check analysis rules against expected problems",
	Long: `ruletest runs static analysis rules over fixture packages and checks that
the reported problems match the expected ones one to one.

Suites are files named *.ruletest.yaml, *.ruletest.yml or *.ruletest.toml.`,
	Example: `
  ruletest .                           # Check every suite below the current directory
  ruletest rules/deferinloop           # Check suites of one rule
  ruletest --json .                    # JSON output for CI/CD
  ruletest --strategy=maximal .        # Pair problems with a maximum matching`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCheckCmd,
}

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Check suites",
	Args:  cobra.ArbitraryArgs,
	RunE:  runCheckCmd,
}

var initConfigCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Creates a .ruletest.yaml configuration file with default settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exists, _ := afero.Exists(appFs, configFileName); exists && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configFileName)
		}
		if err := writeDefaultConfig(appFs, configFileName); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created default configuration file: %s\n", configFileName)
		fmt.Fprintln(out, "\tEdit this file to enable or disable rules")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("ruletest version %s\n", version.Version))
		sb.WriteString(fmt.Sprintf("Commit: %s\n", version.CommitHash))
		sb.WriteString(fmt.Sprintf("Built: %s\n", version.BuiltAt))
		fmt.Fprint(cmd.OutOrStdout(), sb.String())
	},
}

var listCmd = &cobra.Command{
	Use:   "list-rules",
	Short: "List all available rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := LoadConfig(appFs, configPath)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Available Rules:")
		fmt.Fprintln(out, "================")
		for _, a := range rules.All() {
			state := "enabled"
			if !config.RuleEnabled(a.Name) {
				state = "disabled"
			}
			fmt.Fprintf(out, "• %-20s %-9s %s\n", a.Name, state, a.Doc)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output results in JSON format")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().IntVar(&jobs, "jobs", 0, "Suites checked in parallel (default: number of CPUs)")
	rootCmd.PersistentFlags().StringVar(&strategy, "strategy", "", "Match strategy for every suite: greedy or maximal")
	initConfigCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listCmd)

	cobra.OnInitialize(initLogger)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func initLogger() {
	level := parseLevel(logLevel)
	if verbose && level > slog.LevelDebug {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level, AddSource: verbose})
	} else {
		handler = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			ReportTimestamp: false,
			ReportCaller:    verbose,
			Level:           charmlog.Level(level),
		})
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	config, err := LoadConfig(appFs, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	useJSON := jsonOutput || config.Output.Format == "json"
	return runCheck(cmd.Context(), checkParams{
		targets:  args,
		config:   config,
		fs:       appFs,
		jsonOut:  useJSON,
		colored:  !noColor && !useJSON && !color.NoColor,
		jobs:     jobs,
		stdout:   cmd.OutOrStdout(),
		strategy: strategy,
	})
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errSuitesFailed) {
			slog.Error(err.Error())
		}
		return 1
	}
	return 0
}
