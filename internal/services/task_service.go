package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	apperrors "redmine-planner.com/redmine-planner/internal/errors"
	repository "redmine-planner.com/redmine-planner/internal/repositories"
	"redmine-planner.com/redmine-planner/pkg/constants"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

type TaskService struct {
	repo      *repository.TaskRepository
	history   *repository.HistoryRepository
	connector *Connector
	now       func() time.Time
}

func NewTaskService(
	repo *repository.TaskRepository,
	history *repository.HistoryRepository,
	connector *Connector,
) *TaskService {
	return &TaskService{
		repo:      repo,
		history:   history,
		connector: connector,
		now:       time.Now,
	}
}

func (s *TaskService) today() string {
	return s.now().Format(constants.DateLayout)
}

// List returns the tasks of date, today when empty. An empty today is seeded
// from the most recent earlier day unless noAutoCopy is set.
func (s *TaskService) List(ctx context.Context, date string, noAutoCopy bool) ([]model.Task, error) {
	today := s.today()
	if date == "" {
		date = today
	}

	tasks, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(tasks) > 0 || date != today || noAutoCopy {
		return tasks, nil
	}

	return s.copyForward(ctx, today)
}

func (s *TaskService) copyForward(ctx context.Context, today string) ([]model.Task, error) {
	source, err := s.repo.MostRecentDateBefore(ctx, today)
	if err != nil || source == "" {
		return []model.Task{}, err
	}

	previous, err := s.repo.ListByDate(ctx, source)
	if err != nil {
		return nil, err
	}

	copied := make([]model.Task, 0, len(previous))
	for _, t := range previous {
		t.ID = uuid.NewString()
		t.Date = today
		t.IsLogged = false
		t.TimeEntryID = nil
		t.LastLoggedDate = nil
		t.CreatedAt = time.Time{}
		t.UpdatedAt = time.Time{}
		copied = append(copied, t)
	}

	if err := s.repo.CreateBatch(ctx, copied); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"from": source, "to": today, "count": len(copied)}).Info("auto-copied tasks")
	return copied, nil
}

// Save creates the task or overwrites the one with the same id.
func (s *TaskService) Save(ctx context.Context, task *model.Task) error {
	if err := s.validate(task); err != nil {
		return err
	}

	if err := s.repo.Upsert(ctx, task); err != nil {
		return err
	}

	entry := model.HistoryFromTask(*task, s.now().UTC())
	if err := s.history.Record(ctx, &entry); err != nil {
		log.WithError(err).WithField("task", task.Name).Warn("failed to record task history")
	}
	return nil
}

func (s *TaskService) Update(ctx context.Context, id string, task *model.Task) error {
	task.ID = id
	if err := s.validate(task); err != nil {
		return err
	}
	return s.repo.Update(ctx, task)
}

// Delete removes the task. When fromRedmine is set and the task carries a time
// entry, the Redmine entry is deleted first; a failure there does not stop the
// local delete.
func (s *TaskService) Delete(ctx context.Context, id string, fromRedmine bool) error {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if fromRedmine && model.Present(task.TimeEntryID) {
		s.deleteRemote(ctx, *task.TimeEntryID)
	}

	return s.repo.Delete(ctx, id)
}

func (s *TaskService) deleteRemote(ctx context.Context, entryID int) {
	fields := log.Fields{"time_entry_id": entryID}

	gateway, err := s.connector.Gateway(ctx)
	if err != nil {
		log.WithFields(fields).WithError(err).Warn("skipping redmine delete")
		return
	}
	if err := gateway.DeleteTimeEntry(ctx, entryID); err != nil {
		log.WithFields(fields).WithError(err).Warn("failed to delete redmine time entry")
		return
	}
	log.WithFields(fields).Info("deleted redmine time entry")
}

func (s *TaskService) validate(task *model.Task) error {
	if strings.TrimSpace(task.ID) == "" {
		return apperrors.ErrTaskIDRequired
	}
	if strings.TrimSpace(task.Name) == "" {
		return apperrors.Validation("task name is required")
	}
	if task.PlannedHours < 0 {
		return apperrors.Validation("planned_hours must not be negative")
	}
	if err := task.CheckInvariants(); err != nil {
		return apperrors.Validation(err.Error())
	}
	if task.Date == "" {
		task.Date = s.today()
	}
	if task.RDFunctionTeam == "" {
		task.RDFunctionTeam = constants.DefaultRDFunctionTeam
	}
	return nil
}
