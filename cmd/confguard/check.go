package main

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sagarc03/confguard"
	"github.com/sagarc03/confguard/config"
	"github.com/sagarc03/confguard/report"
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate a configuration file",
	Long: `Validate a daemon INI configuration file and print every problem found.

Exit status is 0 when the file is valid, 1 when problems were found and 2 when
the check could not run (for example when no path is given and CONFIG_PATH
is not set).`,
	Example: `  confguard check /etc/daemon.ini
  CONFIG_PATH=/etc/daemon.ini confguard check -o json
  confguard check --record /etc/daemon.ini`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("config", "", "configuration file to check (env: CONFIG_PATH)")
	checkCmd.Flags().Bool("record", false, "record the run in the history backend (env: CONFGUARD_HISTORY_ENABLED)")
	rootCmd.AddCommand(checkCmd)
}

// checkPath picks the file to validate. An empty result lets the service fall
// back to CONFIG_PATH.
func checkPath(args []string, cfg *config.Config) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return cfg.Check.Path
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}
	formatter := report.NewFormatter(cfg.Output.Format, cfg.Output.Quiet)

	fatal := func(err error) error {
		_ = formatter.FormatError(cmd.ErrOrStderr(), err)
		return &exitError{code: exitFatal, err: err, silent: true}
	}

	var repo confguard.RunRepo
	if cfg.History.Enabled {
		r, cleanup, err := openHistory(ctx, cfg)
		if err != nil {
			return fatal(err)
		}
		defer cleanup()
		repo = r
	}

	service, err := confguard.NewCheckService(afero.NewOsFs(), repo)
	if err != nil {
		return fatal(fmt.Errorf("create service: %w", err))
	}

	result, err := service.Check(ctx, checkPath(args, cfg))
	if err != nil {
		if result.ID == uuid.Nil {
			return fatal(err)
		}
		slog.Warn("run was not recorded", "path", result.Path, "err", err)
	}

	if err := formatter.FormatReport(cmd.OutOrStdout(), result); err != nil {
		return fatal(fmt.Errorf("write report: %w", err))
	}

	if !result.Valid {
		return &exitError{code: exitProblems, silent: true}
	}
	return nil
}
