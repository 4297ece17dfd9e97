package main

import (
	"github.com/spf13/cobra"

	"github.com/sagarc03/confguard"
	"github.com/sagarc03/confguard/config"
	"github.com/sagarc03/confguard/report"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the validation schema",
	Long:  `Print every section and key confguard checks, with the rule applied to each value.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		formatter := report.NewFormatter(cfg.Output.Format, cfg.Output.Quiet)
		return formatter.FormatSchema(cmd.OutOrStdout(), confguard.DefaultSchema)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
