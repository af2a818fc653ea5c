package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "redmine-planner.com/redmine-planner/internal/errors"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) ListByDate(ctx context.Context, date string) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("created_at asc").
		Find(&tasks).Error
	return tasks, errors.Wrapf(err, "listing tasks for %s", date)
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrTaskNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading task %s", id)
	}
	return &task, nil
}

// MostRecentDateBefore returns the latest day before date that has tasks, or "".
func (r *TaskRepository) MostRecentDateBefore(ctx context.Context, date string) (string, error) {
	var dates []string
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("date < ?", date).
		Order("date desc").
		Limit(1).
		Pluck("date", &dates).Error
	if err != nil {
		return "", errors.Wrap(err, "looking up previous task day")
	}
	if len(dates) == 0 {
		return "", nil
	}
	return dates[0], nil
}

// Upsert inserts the task or replaces every column but created_at.
func (r *TaskRepository) Upsert(ctx context.Context, task *model.Task) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "redmine_issue_id", "project_id", "planned_hours", "is_logged",
			"is_paused", "activity_id", "rd_function_team", "comments", "date",
			"time_entry_id", "last_logged_date", "updated_at",
		}),
	}).Create(task).Error
	return errors.Wrapf(err, "saving task %s", task.ID)
}

func (r *TaskRepository) CreateBatch(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return errors.Wrap(r.db.WithContext(ctx).Create(&tasks).Error, "copying tasks")
}

func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"name":             task.Name,
			"redmine_issue_id": task.RedmineIssueID,
			"project_id":       task.ProjectID,
			"planned_hours":    task.PlannedHours,
			"is_logged":        task.IsLogged,
			"is_paused":        task.IsPaused,
			"activity_id":      task.ActivityID,
			"rd_function_team": task.RDFunctionTeam,
			"comments":         task.Comments,
			"date":             task.Date,
			"time_entry_id":    task.TimeEntryID,
			"last_logged_date": task.LastLoggedDate,
			"updated_at":       time.Now().UTC(),
		})

	if res.Error != nil {
		return errors.Wrapf(res.Error, "updating task %s", task.ID)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

// MarkLogged records the Redmine time entry of a task. A logged task always
// carries a positive entry id.
func (r *TaskRepository) MarkLogged(ctx context.Context, id string, timeEntryID int, date string) error {
	if timeEntryID <= 0 {
		return apperrors.Validation("time entry id must be positive")
	}

	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_logged":        true,
			"time_entry_id":    timeEntryID,
			"last_logged_date": date,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "marking task %s logged", id)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "deleting task %s", id)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}
