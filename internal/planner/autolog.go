package planner

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	apperrors "redmine-planner.com/redmine-planner/internal/errors"
	"redmine-planner.com/redmine-planner/pkg/constants"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

const noPendingNotice = "No pending tasks to log"

// BatchReport is what the user is told after an auto-log attempt.
type BatchReport struct {
	// Empty is set when nothing was eligible and no request was made.
	Empty     bool
	Notice    string
	Status    constants.BatchStatus
	Submitted int
	Logged    int
	Failures  []string
	// Skipped lists eligible tasks that cannot be logged yet.
	Skipped []string
}

// AutoLog submits every eligible task of the current list in one batch.
// manual marks a user-triggered run, which gets a notice when there is
// nothing to do. A partial success returns the report together with a
// *errors.PartialBatchFailure.
func (p *Planner) AutoLog(ctx context.Context, manual bool) (BatchReport, error) {
	return p.submit(ctx, p.Tasks(), manual)
}

// LogTask submits a single task right away, paused or not.
func (p *Planner) LogTask(ctx context.Context, id string) (BatchReport, error) {
	task, ok := p.Task(id)
	if !ok {
		return BatchReport{}, apperrors.Validation(fmt.Sprintf("unknown task %q", id))
	}
	if task.IsLogged {
		return BatchReport{}, apperrors.Validation(fmt.Sprintf("task %q is already logged", task.Name))
	}
	if task.PlannedHours <= 0 {
		return BatchReport{}, apperrors.Validation(fmt.Sprintf("task %q has no planned hours", task.Name))
	}

	task.IsPaused = false
	return p.submit(ctx, []model.Task{task}, true)
}

func (p *Planner) submit(ctx context.Context, tasks []model.Task, manual bool) (BatchReport, error) {
	var (
		report BatchReport
		batch  []model.Task
	)
	for _, t := range tasks {
		if !t.Eligible() {
			continue
		}
		if !t.Loggable() {
			report.Skipped = append(report.Skipped, fmt.Sprintf("Task '%s': no issue or project selected", t.Name))
			continue
		}
		batch = append(batch, t)
	}

	if len(batch) == 0 {
		report.Empty = true
		if manual {
			report.Notice = noPendingNotice
		}
		return report, nil
	}

	report.Submitted = len(batch)
	result, err := p.backend.LogBatch(ctx, batch)
	if err != nil {
		return report, err
	}

	report.Status = result.Status
	report.Logged = result.Logged
	report.Failures = result.Errors

	switch result.Status {
	case constants.BatchSuccess, constants.BatchPartialSuccess:
	default:
		return report, apperrors.Rejected(0, batchMessage(result))
	}

	log.WithFields(log.Fields{
		"status":    result.Status,
		"submitted": report.Submitted,
		"logged":    result.Logged,
	}).Info("log batch submitted")

	if err := p.Refresh(ctx, true); err != nil {
		log.WithError(err).Warn("failed to refresh after log batch")
		return report, err
	}

	if result.Status == constants.BatchPartialSuccess {
		return report, &apperrors.PartialBatchFailure{Logged: result.Logged, Errors: result.Errors}
	}
	return report, nil
}

func batchMessage(result model.BatchResult) string {
	switch {
	case result.Error != "":
		return result.Error
	case len(result.Errors) > 0:
		return strings.Join(result.Errors, "; ")
	default:
		return "log batch failed"
	}
}
