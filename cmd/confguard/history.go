package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sagarc03/confguard"
	"github.com/sagarc03/confguard/config"
	"github.com/sagarc03/confguard/database"
	"github.com/sagarc03/confguard/report"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded validation runs",
	Long: `List validation runs recorded in the configured history backend,
newest first.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", confguard.DefaultRunLimit, "maximum number of runs to list (1-1000)")
	historyCmd.Flags().String("path", "", "only list runs for this config path")
	rootCmd.AddCommand(historyCmd)
}

// openHistory connects to the configured history backend, migrating and
// validating its schema.
func openHistory(ctx context.Context, cfg *config.Config) (confguard.RunRepo, func(), error) {
	dbCfg := cfg.History.Database()

	repo, cleanup, err := database.Open(ctx, dbCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open history: %w", err)
	}
	slog.Debug("connected to history backend", "type", dbCfg.Type, "table", dbCfg.Table)

	return repo, cleanup, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}
	formatter := report.NewFormatter(cfg.Output.Format, cfg.Output.Quiet)

	repo, cleanup, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	service, err := confguard.NewCheckService(afero.NewOsFs(), repo)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	path, _ := cmd.Flags().GetString("path")

	runs, err := service.History(ctx, confguard.RunQuery{Path: path, Limit: limit})
	if err != nil {
		return err
	}

	return formatter.FormatHistory(cmd.OutOrStdout(), runs)
}
