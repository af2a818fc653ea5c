// Package client talks to the planner backend over its REST API.
package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	apperrors "redmine-planner.com/redmine-planner/internal/errors"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e errorBody) text(fallback string) string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Error != "":
		return e.Error
	default:
		return fallback
	}
}

// LogBatchTimeoutFactor scales the request timeout for log batches, which
// wait on several Redmine calls in the backend.
const LogBatchTimeoutFactor = 12

type Client struct {
	http  *resty.Client
	batch *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:  newResty(baseURL, timeout),
		batch: newResty(baseURL, timeout*LogBatchTimeoutFactor),
	}
}

func newResty(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
}

func (c *Client) request(ctx context.Context, method, path string, callback func(req *resty.Request), out interface{}) error {
	return c.execute(ctx, c.http, method, path, callback, out)
}

func (c *Client) execute(ctx context.Context, rc *resty.Client, method, path string, callback func(req *resty.Request), out interface{}) error {
	var e errorBody
	req := rc.R().SetContext(ctx).SetError(&e)
	if callback != nil {
		callback(req)
	}
	if out != nil {
		req.SetResult(out)
	}

	res, err := req.Execute(method, path)
	if err != nil {
		return apperrors.Network(err)
	}
	if res.IsError() {
		return apperrors.Rejected(res.StatusCode(), e.text(res.Status()))
	}
	return nil
}

func (c *Client) ListTasks(ctx context.Context, date string, noAutoCopy bool) ([]model.Task, error) {
	var tasks []model.Task
	err := c.request(ctx, http.MethodGet, "/api/tasks", func(req *resty.Request) {
		req.SetQueryParams(map[string]string{
			"date_str":     date,
			"no_auto_copy": strconv.FormatBool(noAutoCopy),
		})
	}, &tasks)
	return tasks, err
}

func (c *Client) CreateTask(ctx context.Context, task model.Task) error {
	return c.request(ctx, http.MethodPost, "/api/tasks", func(req *resty.Request) {
		req.SetBody(task)
	}, nil)
}

func (c *Client) UpdateTask(ctx context.Context, task model.Task) error {
	return c.request(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(task.ID), func(req *resty.Request) {
		req.SetBody(task)
	}, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id string, deleteFromRedmine bool) error {
	return c.request(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), func(req *resty.Request) {
		req.SetQueryParam("delete_from_redmine", strconv.FormatBool(deleteFromRedmine))
	}, nil)
}

func (c *Client) LogBatch(ctx context.Context, tasks []model.Task) (model.BatchResult, error) {
	var result model.BatchResult
	err := c.execute(ctx, c.batch, http.MethodPost, "/api/planner/log_batch", func(req *resty.Request) {
		req.SetBody(tasks)
	}, &result)
	return result, err
}

func (c *Client) UpdateTimeEntry(ctx context.Context, id int, entry model.TimeEntryRequest) error {
	return c.request(ctx, http.MethodPut, "/api/redmine/time_entries/"+strconv.Itoa(id), func(req *resty.Request) {
		req.SetBody(entry)
	}, nil)
}

func (c *Client) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := c.request(ctx, http.MethodGet, "/api/profiles", nil, &profiles)
	return profiles, err
}

func (c *Client) ListHistory(ctx context.Context) ([]model.HistoryEntry, error) {
	var entries []model.HistoryEntry
	err := c.request(ctx, http.MethodGet, "/api/task_history", nil, &entries)
	return entries, err
}

func (c *Client) ListIssues(ctx context.Context, projectID int) ([]model.Issue, error) {
	var issues []model.Issue
	err := c.request(ctx, http.MethodGet, "/api/redmine/issues", func(req *resty.Request) {
		req.SetQueryParams(map[string]string{
			"project_id": strconv.Itoa(projectID),
			"scope":      "me",
		})
	}, &issues)
	return issues, err
}

func (c *Client) Settings(ctx context.Context) (model.Settings, error) {
	var s model.Settings
	err := c.request(ctx, http.MethodGet, "/api/settings", nil, &s)
	return s, err
}

func (c *Client) TimeEntries(ctx context.Context, from, to string) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	err := c.request(ctx, http.MethodGet, "/api/redmine/time_entries", func(req *resty.Request) {
		req.SetQueryParams(map[string]string{"from_date": from, "to_date": to})
	}, &entries)
	return entries, err
}
