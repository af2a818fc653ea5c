package redmine

import (
	"fmt"
	"strings"
)

type ref struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (r *ref) name() string {
	if r == nil || r.Name == "" {
		return "-"
	}
	return r.Name
}

type projectsPage struct {
	Projects   []ref `json:"projects"`
	TotalCount int   `json:"total_count"`
	Offset     int   `json:"offset"`
	Limit      int   `json:"limit"`
}

type issue struct {
	ID             int       `json:"id"`
	Subject        string    `json:"subject"`
	Description    string    `json:"description"`
	Project        ref       `json:"project"`
	Status         *ref      `json:"status"`
	Priority       *ref      `json:"priority"`
	Author         *ref      `json:"author"`
	AssignedTo     *ref      `json:"assigned_to"`
	Category       *ref      `json:"category"`
	FixedVersion   *ref      `json:"fixed_version"`
	StartDate      string    `json:"start_date"`
	DueDate        string    `json:"due_date"`
	DoneRatio      int       `json:"done_ratio"`
	EstimatedHours *float64  `json:"estimated_hours"`
	SpentHours     *float64  `json:"spent_hours"`
	CreatedOn      string    `json:"created_on"`
	UpdatedOn      string    `json:"updated_on"`
	Journals       []journal `json:"journals"`
}

type journal struct {
	User      ref    `json:"user"`
	Notes     string `json:"notes"`
	CreatedOn string `json:"created_on"`
}

type issuesPage struct {
	Issues     []issue `json:"issues"`
	TotalCount int     `json:"total_count"`
}

type issueEnvelope struct {
	Issue issue `json:"issue"`
}

type timeEntry struct {
	ID        int     `json:"id"`
	Project   ref     `json:"project"`
	Issue     *ref    `json:"issue"`
	User      ref     `json:"user"`
	Activity  ref     `json:"activity"`
	Hours     float64 `json:"hours"`
	Comments  string  `json:"comments"`
	SpentOn   string  `json:"spent_on"`
	CreatedOn string  `json:"created_on"`
	UpdatedOn string  `json:"updated_on"`
}

type timeEntriesPage struct {
	TimeEntries []timeEntry `json:"time_entries"`
	TotalCount  int         `json:"total_count"`
}

type customField struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
}

type timeEntryBody struct {
	IssueID      *int          `json:"issue_id,omitempty"`
	ProjectID    *int          `json:"project_id,omitempty"`
	SpentOn      string        `json:"spent_on,omitempty"`
	Hours        float64       `json:"hours"`
	ActivityID   int           `json:"activity_id,omitempty"`
	Comments     string        `json:"comments"`
	CustomFields []customField `json:"custom_fields,omitempty"`
}

type timeEntryEnvelope struct {
	TimeEntry timeEntryBody `json:"time_entry"`
}

type createdEntryEnvelope struct {
	TimeEntry struct {
		ID int `json:"id"`
	} `json:"time_entry"`
}

type errorResponse struct {
	Errors []string `json:"errors"`
}

// APIError is a non-2xx answer from Redmine.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("redmine returned %d: %s", e.StatusCode, e.Message)
}

func (e errorResponse) message(fallback string) string {
	if len(e.Errors) == 0 {
		return fallback
	}
	return strings.Join(e.Errors, "; ")
}
