package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"redmine-planner.com/redmine-planner/internal/cache"
	apperrors "redmine-planner.com/redmine-planner/internal/errors"
	repository "redmine-planner.com/redmine-planner/internal/repositories"
	"redmine-planner.com/redmine-planner/pkg/constants"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

// LogService turns planner tasks into Redmine time entries.
type LogService struct {
	repo      *repository.TaskRepository
	connector *Connector
	pool      *PoolService
	cache     cache.Cache
	now       func() time.Time
}

func NewLogService(repo *repository.TaskRepository, connector *Connector, pool *PoolService, c cache.Cache) *LogService {
	return &LogService{
		repo:      repo,
		connector: connector,
		pool:      pool,
		cache:     c,
		now:       time.Now,
	}
}

// LogBatch submits every eligible task and marks the stored ones logged.
// Tasks already logged (or logged today) and tasks without hours are skipped.
func (s *LogService) LogBatch(ctx context.Context, tasks []model.Task) model.BatchResult {
	gateway, err := s.connector.Gateway(ctx)
	if err != nil {
		return model.BatchResult{Status: constants.BatchError, Error: apperrors.Message(err)}
	}

	today := s.now().Format(constants.DateLayout)

	var (
		subs   []Submission
		failed []string
	)
	for _, t := range tasks {
		if skip(t, today) {
			continue
		}
		if !t.Loggable() {
			failed = append(failed, failure(t.Name, "no issue or project selected"))
			continue
		}
		subs = append(subs, Submission{TaskID: t.ID, TaskName: t.Name, Entry: t.TimeEntryRequest(today)})
	}

	// Entries Redmine accepted must be recorded even when the caller gave up,
	// otherwise the next run logs them again.
	commitCtx := context.WithoutCancel(ctx)

	logged := 0
	for _, r := range s.pool.Submit(ctx, gateway, subs) {
		if r.Err != nil {
			failed = append(failed, failure(r.TaskName, reason(r.Err)))
			continue
		}
		if r.TimeEntryID <= 0 {
			log.WithField("task_id", r.TaskID).Error("redmine accepted a time entry without returning its id")
			failed = append(failed, failure(r.TaskName, "Redmine returned no time entry id"))
			continue
		}
		if err := s.repo.MarkLogged(commitCtx, r.TaskID, r.TimeEntryID, r.Entry.SpentOn); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"task_id":       r.TaskID,
				"time_entry_id": r.TimeEntryID,
			}).Error("time entry created but task could not be marked logged")
			failed = append(failed, failure(r.TaskName, fmt.Sprintf("logged as time entry %d but not saved locally: %s", r.TimeEntryID, apperrors.Message(err))))
			continue
		}
		logged++
	}

	if logged > 0 {
		if err := s.cache.Delete(commitCtx, cache.TimeEntriesKey); err != nil {
			log.WithError(err).Warn("failed to invalidate time entry cache")
		}
	}

	log.WithFields(log.Fields{"logged": logged, "failed": len(failed)}).Info("log batch finished")
	return batchResult(logged, failed)
}

func batchResult(logged int, failed []string) model.BatchResult {
	switch {
	case len(failed) == 0:
		return model.BatchResult{Status: constants.BatchSuccess, Logged: logged}
	case logged > 0:
		return model.BatchResult{Status: constants.BatchPartialSuccess, Logged: logged, Errors: failed}
	default:
		return model.BatchResult{Status: constants.BatchError, Errors: failed, Error: "no task could be logged"}
	}
}

func skip(t model.Task, today string) bool {
	if t.IsLogged || t.PlannedHours <= 0 {
		return true
	}
	return t.LastLoggedDate != nil && *t.LastLoggedDate == today
}

func failure(name, reason string) string {
	return fmt.Sprintf("Task '%s': %s", name, reason)
}

func reason(err error) string {
	if apiErr, ok := asAPIError(err); ok {
		return apiErr.Message
	}
	return err.Error()
}
