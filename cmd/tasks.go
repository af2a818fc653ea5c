package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	apperrors "redmine-planner.com/redmine-planner/internal/errors"
	"redmine-planner.com/redmine-planner/internal/planner"
	"redmine-planner.com/redmine-planner/internal/templates"
	"redmine-planner.com/redmine-planner/pkg/constants"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage today's planned tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show today's tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := bootstrap()
		p, _, done, err := loadPlanner(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer done()

		printTasks(cmd.OutOrStdout(), today(), p.Tasks(), p.TotalPlanned())
		return nil
	},
}

type addOptions struct {
	template string
	project  int
	issue    int
	activity int
	hours    float64
	comments string
	team     string
}

var addFlags addOptions

var tasksAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Plan a new task for today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := bootstrap()
		ctx := cmd.Context()
		p, _, done, err := loadPlanner(ctx, cfg)
		if err != nil {
			return err
		}
		defer done()

		draft, err := buildDraft(ctx, p, addFlags, cmd.Flags().Changed)
		if err != nil {
			return err
		}

		task, err := p.AddTask(ctx, draft)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s, %.2fh)\n", task.Name, task.ID, task.PlannedHours)
		return nil
	},
}

// buildDraft starts from the named template, if any, and lets explicitly set
// flags override it. It never waits for the template's issue lookup; the
// template name already outranks the issue subject.
func buildDraft(ctx context.Context, p *planner.Planner, opts addOptions, changed func(flag string) bool) (planner.Draft, error) {
	draft := planner.Draft{PlannedHours: opts.hours}
	if opts.template != "" {
		sources, err := p.Templates(ctx)
		if err != nil {
			return planner.Draft{}, err
		}
		src, ok := templates.Find(sources, opts.template)
		if !ok {
			return planner.Draft{}, apperrors.Validation(fmt.Sprintf("no profile or history entry named %q", opts.template))
		}
		draft = p.ApplyTemplate(draft, src)
	}

	if changed("project") {
		draft.ProjectID = opts.project
	}
	if changed("issue") {
		draft.IssueID = opts.issue
		draft.IssueName = ""
		draft.IssueSubject = ""
	}
	if changed("activity") {
		draft.ActivityID = opts.activity
	}
	if changed("comments") {
		draft.Comments = opts.comments
	}
	if changed("team") {
		draft.RDFunctionTeam = opts.team
	}
	return draft, nil
}

var tasksPauseCmd = &cobra.Command{
	Use:   "pause <id>",
	Short: "Pause or resume a task; paused tasks are left out of the auto-log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := bootstrap()
		ctx := cmd.Context()
		p, _, done, err := loadPlanner(ctx, cfg)
		if err != nil {
			return err
		}
		defer done()

		task, err := p.TogglePause(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", task.Name, stateLabel(planner.State(task)))
		return nil
	},
}

var tasksRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(cmd, func(p *planner.Planner) (planner.UpdateResult, error) {
			return p.RenameTask(cmd.Context(), args[0], args[1])
		})
	},
}

var tasksCommentCmd = &cobra.Command{
	Use:   "comment <id> <comments>",
	Short: "Replace the comments of a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(cmd, func(p *planner.Planner) (planner.UpdateResult, error) {
			return p.SetComments(cmd.Context(), args[0], args[1])
		})
	},
}

var tasksHoursCmd = &cobra.Command{
	Use:   "hours <id> <hours>",
	Short: "Change the planned hours of a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hours, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return apperrors.Validation(fmt.Sprintf("invalid hours %q", args[1]))
		}
		return runEdit(cmd, func(p *planner.Planner) (planner.UpdateResult, error) {
			return p.SetPlannedHours(cmd.Context(), args[0], hours)
		})
	},
}

// runEdit applies an edit and reports a kept-but-unsynced edit as a warning.
func runEdit(cmd *cobra.Command, edit func(*planner.Planner) (planner.UpdateResult, error)) error {
	cfg := bootstrap()
	p, _, done, err := loadPlanner(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer done()

	result, err := edit(p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "updated %s\n", result.Task.Name)
	if result.RemoteErr != nil {
		fmt.Fprintln(out, pausedStyle.Render(notice(result.RemoteErr)+", local edit kept"))
	}
	return nil
}

var deleteFromRedmine bool

var tasksDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := bootstrap()
		ctx := cmd.Context()
		p, _, done, err := loadPlanner(ctx, cfg)
		if err != nil {
			return err
		}
		defer done()

		if err := p.DeleteTask(ctx, args[0], deleteFromRedmine); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
		return nil
	},
}

var tasksLogCmd = &cobra.Command{
	Use:   "log <id>",
	Short: "Log a single task to Redmine now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := bootstrap()
		ctx := cmd.Context()
		p, _, done, err := loadPlanner(ctx, cfg)
		if err != nil {
			return err
		}
		defer done()

		report, err := p.LogTask(ctx, args[0])
		printReport(cmd.OutOrStdout(), report)
		return err
	},
}

func init() {
	f := tasksAddCmd.Flags()
	f.StringVarP(&addFlags.template, "template", "t", "", "profile or history entry to copy")
	f.IntVarP(&addFlags.project, "project", "p", 0, "Redmine project id")
	f.IntVarP(&addFlags.issue, "issue", "i", 0, "Redmine issue id")
	f.IntVar(&addFlags.activity, "activity", constants.DefaultActivityID, "Redmine activity id")
	f.Float64VarP(&addFlags.hours, "hours", "H", constants.DefaultPlannedHours, "planned hours")
	f.StringVarP(&addFlags.comments, "comments", "c", "", "time entry comments, also used as the task name")
	f.StringVar(&addFlags.team, "team", "", "R&D function team")

	tasksDeleteCmd.Flags().BoolVar(&deleteFromRedmine, "redmine", false, "also delete the Redmine time entry of a logged task")

	tasksCmd.AddCommand(tasksListCmd, tasksAddCmd, tasksPauseCmd, tasksRenameCmd, tasksCommentCmd, tasksHoursCmd, tasksDeleteCmd, tasksLogCmd)
	rootCmd.AddCommand(tasksCmd)
}
