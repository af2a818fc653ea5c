package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"redmine-planner.com/redmine-planner/internal/calendar"
	"redmine-planner.com/redmine-planner/internal/client"
	apperrors "redmine-planner.com/redmine-planner/internal/errors"
	"redmine-planner.com/redmine-planner/pkg/constants"
)

var calendarFlags struct {
	from string
	to   string
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show logged time entries as blocks on a day grid",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to := calendarFlags.from, calendarFlags.to
		if from == "" {
			from = today()
		}
		if to == "" {
			to = from
		}
		for _, d := range []string{from, to} {
			if _, err := time.Parse(constants.DateLayout, d); err != nil {
				return apperrors.Validation(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", d))
			}
		}

		cfg := bootstrap()
		ctx := cmd.Context()
		backend := client.New(cfg.BackendURL, cfg.HTTPTimeout)

		settings, err := backend.Settings(ctx)
		if err != nil {
			return err
		}
		entries, err := backend.TimeEntries(ctx, from, to)
		if err != nil {
			return err
		}

		blocks := calendar.Blocks(entries, time.Local)
		totals := calendar.Totals(blocks)
		window := calendar.WindowFrom(settings)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Logged time %s to %s", from, to)))
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("day grid %s-%s", window.Start, window.End)))

		byDay := make(map[string][]calendar.Block)
		for _, b := range blocks {
			day := b.Start.Format(constants.DateLayout)
			byDay[day] = append(byDay[day], b)
		}
		days := make([]string, 0, len(byDay))
		for day := range byDay {
			days = append(days, day)
		}
		sort.Strings(days)

		for _, day := range days {
			header := fmt.Sprintf("%s  %.2fh", day, totals[day])
			if len(calendar.Background(byDay[day][0].Start)) == 0 {
				header += "  weekend"
			}
			fmt.Fprintln(out, headerStyle.Render(header))
			for _, b := range byDay[day] {
				fmt.Fprintf(out, "  %s-%s  %s\n", b.Start.Format(constants.ClockLayout), b.End.Format(constants.ClockLayout), b.Title)
			}
		}
		if len(days) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("no time logged"))
		}
		return nil
	},
}

var calendarSpanCmd = &cobra.Command{
	Use:   "span <HH:MM> <HH:MM>",
	Short: "Hours a selected span would log, lunch break excluded",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		day := time.Now()
		start, err := clockOn(day, args[0])
		if err != nil {
			return err
		}
		end, err := clockOn(day, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%.1fh\n", calendar.SelectionHours(start, end))
		return nil
	},
}

func clockOn(day time.Time, value string) (time.Time, error) {
	t, err := time.Parse(constants.ClockLayout, value)
	if err != nil {
		return time.Time{}, apperrors.Validation(fmt.Sprintf("invalid time %q, expected HH:MM", value))
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

func init() {
	calendarCmd.Flags().StringVar(&calendarFlags.from, "from", "", "first day, YYYY-MM-DD (default today)")
	calendarCmd.Flags().StringVar(&calendarFlags.to, "to", "", "last day, YYYY-MM-DD (default --from)")

	calendarCmd.AddCommand(calendarSpanCmd)
	rootCmd.AddCommand(calendarCmd)
}

