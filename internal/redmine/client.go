package redmine

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"redmine-planner.com/redmine-planner/pkg/constants"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

const pageSize = 100

// Activities is the fixed activity map used by the tracker.
var Activities = map[int]string{
	20: "Study Spec",
	8:  "Design",
	9:  "Development",
	10: "Validation",
	71: "Maintain",
	14: "Others",
	61: "Support",
	73: "Preparing automation scripts",
	74: "Regression tests",
	75: "Setup test bed",
	76: "Study/Prepare test cases",
	77: "Debug session",
	78: "Code Review",
	72: "RFI/ RFQ",
	62: "SCM review",
}

type Client struct {
	baseURL string
	http    *resty.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		baseURL: baseURL,
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("X-Redmine-API-Key", apiKey).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
}

func (c *Client) URL() string {
	return c.baseURL
}

func (c *Client) request(ctx context.Context, path, method string, callback func(req *resty.Request), out interface{}) (*resty.Response, error) {
	var e errorResponse
	req := c.http.R().SetContext(ctx).SetError(&e)
	if callback != nil {
		callback(req)
	}
	if out != nil {
		req.SetResult(out)
	}

	res, err := req.Execute(method, path)
	if err != nil {
		return nil, errors.Wrapf(err, "redmine %s %s", method, path)
	}
	if res.IsError() {
		return res, &APIError{StatusCode: res.StatusCode(), Message: e.message(res.Status())}
	}
	return res, nil
}

func (c *Client) Projects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	for offset := 0; ; offset += pageSize {
		var page projectsPage
		_, err := c.request(ctx, "/projects.json", http.MethodGet, func(req *resty.Request) {
			req.SetQueryParams(map[string]string{
				"offset": strconv.Itoa(offset),
				"limit":  strconv.Itoa(pageSize),
			})
		}, &page)
		if err != nil {
			return nil, err
		}

		for _, p := range page.Projects {
			projects = append(projects, model.Project{ID: p.ID, Name: p.Name})
		}
		if len(page.Projects) == 0 || offset+pageSize >= page.TotalCount {
			break
		}
	}

	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

// Issues lists open issues. A zero projectID lists across projects; scope "me"
// restricts to issues assigned to the API key owner.
func (c *Client) Issues(ctx context.Context, projectID int, scope string) ([]model.Issue, error) {
	params := map[string]string{
		"status_id": "open",
		"limit":     strconv.Itoa(pageSize),
	}
	if projectID > 0 {
		params["project_id"] = strconv.Itoa(projectID)
	}
	if scope == "me" {
		params["assigned_to_id"] = "me"
	}

	var issues []model.Issue
	for offset := 0; ; offset += pageSize {
		params["offset"] = strconv.Itoa(offset)

		var page issuesPage
		_, err := c.request(ctx, "/issues.json", http.MethodGet, func(req *resty.Request) {
			req.SetQueryParams(params)
		}, &page)
		if err != nil {
			return nil, err
		}

		for _, i := range page.Issues {
			issues = append(issues, model.Issue{ID: i.ID, Subject: i.Subject, ProjectID: i.Project.ID})
		}
		if len(page.Issues) == 0 || offset+pageSize >= page.TotalCount {
			break
		}
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].Subject < issues[j].Subject })
	return issues, nil
}

func (c *Client) Issue(ctx context.Context, issueID int) (*model.IssueDetails, error) {
	var envelope issueEnvelope
	_, err := c.request(ctx, "/issues/"+strconv.Itoa(issueID)+".json", http.MethodGet, func(req *resty.Request) {
		req.SetQueryParam("include", "journals")
	}, &envelope)
	if err != nil {
		return nil, err
	}

	i := envelope.Issue
	details := &model.IssueDetails{
		ID:             i.ID,
		Subject:        i.Subject,
		Description:    i.Description,
		Status:         i.Status.name(),
		Priority:       i.Priority.name(),
		Author:         i.Author.name(),
		AssignedTo:     i.AssignedTo.name(),
		Category:       i.Category.name(),
		FixedVersion:   i.FixedVersion.name(),
		StartDate:      orDash(i.StartDate),
		DueDate:        orDash(i.DueDate),
		DoneRatio:      i.DoneRatio,
		EstimatedHours: i.EstimatedHours,
		SpentHours:     i.SpentHours,
		CreatedOn:      i.CreatedOn,
		UpdatedOn:      i.UpdatedOn,
		Project:        model.Project{ID: i.Project.ID, Name: i.Project.Name},
		Journals:       []model.Journal{},
		URL:            c.baseURL + "/issues/" + strconv.Itoa(i.ID),
	}
	for _, j := range i.Journals {
		if j.Notes == "" {
			continue
		}
		details.Journals = append(details.Journals, model.Journal{
			User:      j.User.Name,
			CreatedOn: j.CreatedOn,
			Notes:     j.Notes,
		})
	}
	return details, nil
}

// TimeEntries lists the API key owner's time entries between from and to (inclusive, YYYY-MM-DD).
func (c *Client) TimeEntries(ctx context.Context, from, to string) ([]model.TimeEntry, error) {
	params := map[string]string{
		"user_id": "me",
		"limit":   strconv.Itoa(pageSize),
	}
	if from != "" {
		params["from"] = from
	}
	if to != "" {
		params["to"] = to
	}

	var entries []model.TimeEntry
	for offset := 0; ; offset += pageSize {
		params["offset"] = strconv.Itoa(offset)

		var page timeEntriesPage
		_, err := c.request(ctx, "/time_entries.json", http.MethodGet, func(req *resty.Request) {
			req.SetQueryParams(params)
		}, &page)
		if err != nil {
			return nil, err
		}

		for _, e := range page.TimeEntries {
			entries = append(entries, flattenEntry(e))
		}
		if len(page.TimeEntries) == 0 || offset+pageSize >= page.TotalCount {
			break
		}
	}
	return entries, nil
}

func (c *Client) CreateTimeEntry(ctx context.Context, entry model.TimeEntryRequest) (int, error) {
	var created createdEntryEnvelope
	_, err := c.request(ctx, "/time_entries.json", http.MethodPost, func(req *resty.Request) {
		req.SetBody(timeEntryEnvelope{TimeEntry: entryBody(entry)})
	}, &created)
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"time_entry_id": created.TimeEntry.ID,
		"hours":         entry.Hours,
		"spent_on":      entry.SpentOn,
	}).Debug("created redmine time entry")
	return created.TimeEntry.ID, nil
}

func (c *Client) UpdateTimeEntry(ctx context.Context, id int, entry model.TimeEntryRequest) error {
	_, err := c.request(ctx, "/time_entries/"+strconv.Itoa(id)+".json", http.MethodPut, func(req *resty.Request) {
		req.SetBody(timeEntryEnvelope{TimeEntry: entryBody(entry)})
	}, nil)
	return err
}

func (c *Client) DeleteTimeEntry(ctx context.Context, id int) error {
	_, err := c.request(ctx, "/time_entries/"+strconv.Itoa(id)+".json", http.MethodDelete, nil, nil)
	return err
}

// entryBody sends only the issue when one is linked; the project is implied.
func entryBody(entry model.TimeEntryRequest) timeEntryBody {
	team := entry.RDFunctionTeam
	if team == "" {
		team = constants.DefaultRDFunctionTeam
	}

	body := timeEntryBody{
		SpentOn:      entry.SpentOn,
		Hours:        entry.Hours,
		ActivityID:   entry.ActivityID,
		Comments:     entry.Comments,
		CustomFields: []customField{{ID: constants.RDFunctionTeamFieldID, Value: team}},
	}
	if model.Present(entry.IssueID) {
		body.IssueID = entry.IssueID
	} else {
		body.ProjectID = entry.ProjectID
	}
	return body
}

func flattenEntry(e timeEntry) model.TimeEntry {
	entry := model.TimeEntry{
		ID:         e.ID,
		ProjectID:  e.Project.ID,
		Project:    e.Project.Name,
		User:       e.User.Name,
		ActivityID: e.Activity.ID,
		Activity:   e.Activity.Name,
		Hours:      e.Hours,
		Comments:   e.Comments,
		SpentOn:    e.SpentOn,
		CreatedOn:  e.CreatedOn,
		UpdatedOn:  e.UpdatedOn,
	}
	if e.Issue != nil {
		id := e.Issue.ID
		entry.Issue = &id
	}
	return entry
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
