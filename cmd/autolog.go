package cmd

import (
	"github.com/spf13/cobra"
)

var autologCmd = &cobra.Command{
	Use:   "autolog",
	Short: "Log every pending task to Redmine now",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := bootstrap()
		ctx := cmd.Context()

		p, _, done, err := loadPlanner(ctx, cfg)
		if err != nil {
			return err
		}
		defer done()

		report, err := p.AutoLog(ctx, true)
		printReport(cmd.OutOrStdout(), report)
		return err
	},
}

func init() {
	rootCmd.AddCommand(autologCmd)
}
