package model

type Project struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Issue struct {
	ID        int    `json:"id"`
	Subject   string `json:"subject"`
	ProjectID int    `json:"project_id"`
}

type Journal struct {
	User      string `json:"user"`
	CreatedOn string `json:"created_on"`
	Notes     string `json:"notes"`
}

type IssueDetails struct {
	ID             int       `json:"id"`
	Subject        string    `json:"subject"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	Priority       string    `json:"priority"`
	Author         string    `json:"author"`
	AssignedTo     string    `json:"assigned_to"`
	Category       string    `json:"category"`
	FixedVersion   string    `json:"fixed_version"`
	StartDate      string    `json:"start_date"`
	DueDate        string    `json:"due_date"`
	DoneRatio      int       `json:"done_ratio"`
	EstimatedHours *float64  `json:"estimated_hours"`
	SpentHours     *float64  `json:"spent_hours"`
	CreatedOn      string    `json:"created_on,omitempty"`
	UpdatedOn      string    `json:"updated_on,omitempty"`
	Project        Project   `json:"project"`
	Journals       []Journal `json:"journals"`
	URL            string    `json:"url"`
}

// TimeEntry is the flattened view of a Redmine time entry.
type TimeEntry struct {
	ID         int     `json:"id"`
	ProjectID  int     `json:"project_id"`
	Project    string  `json:"project"`
	Issue      *int    `json:"issue"`
	User       string  `json:"user"`
	ActivityID int     `json:"activity_id"`
	Activity   string  `json:"activity"`
	Hours      float64 `json:"hours"`
	Comments   string  `json:"comments"`
	SpentOn    string  `json:"spent_on"`
	StartTime  string  `json:"start_time,omitempty"`
	CreatedOn  string  `json:"created_on"`
	UpdatedOn  string  `json:"updated_on"`
}

type TimeEntryRequest struct {
	ProjectID      *int    `json:"project_id,omitempty"`
	IssueID        *int    `json:"issue_id,omitempty"`
	SpentOn        string  `json:"spent_on"`
	Hours          float64 `json:"hours"`
	ActivityID     int     `json:"activity_id"`
	RDFunctionTeam string  `json:"rd_function_team"`
	Comments       string  `json:"comments"`
}
