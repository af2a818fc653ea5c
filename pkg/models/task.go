package model

import (
	"errors"
	"strings"
	"time"

	"redmine-planner.com/redmine-planner/pkg/constants"
)

var ErrLoggedWithoutEntry = errors.New("a logged task must carry a time entry id")

// Task is one planned unit of work for a single day.
type Task struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	RedmineIssueID *int      `gorm:"column:redmine_issue_id" json:"redmine_issue_id,omitempty"`
	ProjectID      *int      `gorm:"column:project_id" json:"project_id,omitempty"`
	PlannedHours   float64   `gorm:"not null;default:0" json:"planned_hours"`
	IsLogged       bool      `gorm:"not null;default:false" json:"is_logged"`
	IsPaused       bool      `gorm:"not null;default:false" json:"is_paused"`
	ActivityID     *int      `gorm:"column:activity_id" json:"activity_id,omitempty"`
	RDFunctionTeam string    `gorm:"column:rd_function_team" json:"rd_function_team"`
	Comments       string    `json:"comments"`
	Date           string    `gorm:"size:10;index" json:"date"`
	TimeEntryID    *int      `gorm:"column:time_entry_id" json:"time_entry_id,omitempty"`
	LastLoggedDate *string   `gorm:"size:10" json:"last_logged_date,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Loggable reports whether the task points at an issue or a project.
func (t Task) Loggable() bool {
	return Present(t.RedmineIssueID) || Present(t.ProjectID)
}

// Eligible reports whether the task belongs in the next auto-log batch.
func (t Task) Eligible() bool {
	return !t.IsLogged && !t.IsPaused && t.PlannedHours > 0
}

func (t Task) State() constants.TaskState {
	switch {
	case t.IsLogged:
		return constants.StateLogged
	case t.IsPaused:
		return constants.StatePaused
	default:
		return constants.StatePending
	}
}

func (t Task) CheckInvariants() error {
	if t.IsLogged && !Present(t.TimeEntryID) {
		return ErrLoggedWithoutEntry
	}
	return nil
}

// TimeEntryRequest builds the Redmine time entry that mirrors the task.
func (t Task) TimeEntryRequest(fallbackDate string) TimeEntryRequest {
	activityID := constants.DefaultActivityID
	if Present(t.ActivityID) {
		activityID = *t.ActivityID
	}

	comments := t.Comments
	if strings.TrimSpace(comments) == "" {
		comments = t.Name
	}

	team := t.RDFunctionTeam
	if team == "" {
		team = constants.DefaultRDFunctionTeam
	}

	spentOn := t.Date
	if spentOn == "" {
		spentOn = fallbackDate
	}

	return TimeEntryRequest{
		ProjectID:      t.ProjectID,
		IssueID:        t.RedmineIssueID,
		SpentOn:        spentOn,
		Hours:          t.PlannedHours,
		ActivityID:     activityID,
		RDFunctionTeam: team,
		Comments:       comments,
	}
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	t.RedmineIssueID = clonePtr(t.RedmineIssueID)
	t.ProjectID = clonePtr(t.ProjectID)
	t.ActivityID = clonePtr(t.ActivityID)
	t.TimeEntryID = clonePtr(t.TimeEntryID)
	t.LastLoggedDate = clonePtr(t.LastLoggedDate)
	return t
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Present reports whether an optional id is set.
func Present(id *int) bool {
	return id != nil && *id > 0
}

func IntPtr(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}
