package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/confguard/config"
)

var version = "dev"

// Exit statuses.
const (
	exitOK       = 0
	exitProblems = 1
	exitFatal    = 2
)

// exitError carries a process exit status. Silent errors have already been
// reported to the user.
type exitError struct {
	code   int
	err    error
	silent bool
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "confguard",
	Short:   "Validate daemon INI configuration files",
	Long: `confguard checks the General and Watchdog sections of a daemon INI
configuration file against a compiled-in schema and reports every problem.

The file to check comes from the command argument, the --config flag or the
CONFIG_PATH environment variable, in that order.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		settings, _ := cmd.Flags().GetStringSlice("settings")
		cfg, err := config.Load(settings, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}

		env, _ := cmd.Flags().GetString("env")
		setupLogging(env, cfg.Log.Level)

		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("settings", nil, "settings file(s), merged left to right (default: ./confguard.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: CONFGUARD_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("env", "dev", "environment: dev or prod (prod logs JSON)")
	rootCmd.PersistentFlags().StringP("format", "o", "", "output format: text, json, yaml (env: CONFGUARD_OUTPUT_FORMAT)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "print only problems")
	rootCmd.PersistentFlags().String("history-type", "", "history backend: sqlite, postgres (env: CONFGUARD_HISTORY_TYPE)")
	rootCmd.PersistentFlags().String("history-dsn", "", "history connection string (env: CONFGUARD_HISTORY_DSN)")
}

func main() {
	os.Exit(exitCode(rootCmd.Execute()))
}

// exitCode reports err on stderr unless it is silent and maps it to an exit
// status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if !ee.silent {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return ee.code
	}

	_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitFatal
}
