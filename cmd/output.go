package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apperrors "redmine-planner.com/redmine-planner/internal/errors"
	"redmine-planner.com/redmine-planner/internal/planner"
	"redmine-planner.com/redmine-planner/pkg/constants"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4A90E2"))

	loggedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7DC6F"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// notice renders an error as the one line shown to the user.
func notice(err error) string {
	var partial *apperrors.PartialBatchFailure
	if errors.As(err, &partial) {
		return fmt.Sprintf("%d task(s) logged, %d failed", partial.Logged, len(partial.Errors))
	}
	var syncErr *planner.RemoteSyncError
	if errors.As(err, &syncErr) {
		return "Redmine update failed: " + apperrors.Message(syncErr.Err)
	}
	return apperrors.Message(err)
}

func stateLabel(state constants.TaskState) string {
	switch state {
	case constants.StateLogged:
		return loggedStyle.Render(string(state))
	case constants.StatePaused:
		return pausedStyle.Render(string(state))
	default:
		return pendingStyle.Render(string(state))
	}
}

func printTasks(w io.Writer, date string, tasks []model.Task, total float64) {
	fmt.Fprintln(w, titleStyle.Render("Tasks for "+date))
	if len(tasks) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no tasks planned"))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-36s  %-8s  %6s  %s", "ID", "STATE", "HOURS", "NAME")))
	for _, t := range tasks {
		state := planner.State(t)
		fmt.Fprintf(w, "%-36s  %s%s  %6.2f  %s\n",
			t.ID, stateLabel(state), strings.Repeat(" ", 8-len(state)), t.PlannedHours, t.Name)
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("total planned: %.2fh", total)))
}

func printReport(w io.Writer, report planner.BatchReport) {
	if report.Empty {
		if report.Notice != "" {
			fmt.Fprintln(w, mutedStyle.Render(report.Notice))
		}
		return
	}

	fmt.Fprintf(w, "%s  submitted %d, logged %d\n",
		headerStyle.Render(string(report.Status)), report.Submitted, report.Logged)
	for _, f := range report.Failures {
		fmt.Fprintln(w, errorStyle.Render("  "+f))
	}
	for _, s := range report.Skipped {
		fmt.Fprintln(w, pausedStyle.Render("  skipped "+s))
	}
}
