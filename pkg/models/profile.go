package model

import "time"

// Profile is a saved time entry template managed from the settings surface.
type Profile struct {
	Name           string    `gorm:"primaryKey;size:255" json:"name"`
	ProjectID      int       `gorm:"not null" json:"project_id"`
	IssueID        int       `json:"issue_id"`
	ActivityID     int       `gorm:"not null" json:"activity_id"`
	Comments       string    `json:"comments"`
	RDFunctionTeam string    `gorm:"column:rd_function_team" json:"rd_function_team"`
	ProjectName    string    `json:"project_name,omitempty"`
	IssueName      string    `json:"issue_name,omitempty"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

// HistoryEntry remembers the metadata of a task name that was used before.
type HistoryEntry struct {
	Name           string    `gorm:"primaryKey;size:255" json:"name"`
	ProjectID      *int      `json:"project_id,omitempty"`
	IssueID        *int      `json:"issue_id,omitempty"`
	ActivityID     *int      `json:"activity_id,omitempty"`
	Comments       string    `json:"comments"`
	RDFunctionTeam string    `gorm:"column:rd_function_team" json:"rd_function_team"`
	LastUsedAt     time.Time `gorm:"index" json:"last_used_at"`
}

func (HistoryEntry) TableName() string {
	return "task_history"
}

func HistoryFromTask(t Task, usedAt time.Time) HistoryEntry {
	return HistoryEntry{
		Name:           t.Name,
		ProjectID:      t.ProjectID,
		IssueID:        t.RedmineIssueID,
		ActivityID:     t.ActivityID,
		Comments:       t.Comments,
		RDFunctionTeam: t.RDFunctionTeam,
		LastUsedAt:     usedAt,
	}
}
