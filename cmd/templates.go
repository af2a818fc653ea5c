package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List saved profiles and recently used task names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := bootstrap()
		p, _, done := newPlanner(cfg)
		defer done()

		sources, err := p.Templates(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render("Templates"))
		if len(sources) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("no profiles or history yet"))
			return nil
		}

		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-8s  %-30s  %8s  %8s  %s", "KIND", "NAME", "PROJECT", "ISSUE", "COMMENTS")))
		for _, s := range sources {
			fmt.Fprintf(out, "%-8s  %-30s  %8s  %8s  %s\n", s.Kind, s.Name, idOrDash(s.ProjectID), idOrDash(s.IssueID), s.Comments)
		}
		return nil
	},
}

func idOrDash(id int) string {
	if id <= 0 {
		return "-"
	}
	return fmt.Sprint(id)
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}
