package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "redmine-planner.com/redmine-planner/internal/errors"
	"redmine-planner.com/redmine-planner/pkg/constants"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second)
}

func TestListTasks_SendsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.Equal(t, "2026-10-19", r.URL.Query().Get("date_str"))
		assert.Equal(t, "true", r.URL.Query().Get("no_auto_copy"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"a","name":"Standup","planned_hours":1}]`))
	})

	tasks, err := c.ListTasks(context.Background(), "2026-10-19", true)

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Standup", tasks[0].Name)
}

func TestDeleteTask_PassesFlag(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/tasks/a", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("delete_from_redmine"))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.DeleteTask(context.Background(), "a", true))
}

func TestRejectionKeepsBackendMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"task not found"}`))
	})

	err := c.UpdateTask(context.Background(), model.Task{ID: "ghost"})

	assert.True(t, apperrors.IsKind(err, apperrors.KindRemoteRejection))
	assert.Equal(t, http.StatusNotFound, apperrors.StatusCode(err))
	assert.Equal(t, "task not found", apperrors.Message(err))
}

func TestUnreachableBackendIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(srv.URL, time.Second)

	_, err := c.ListProfiles(context.Background())

	assert.True(t, apperrors.IsKind(err, apperrors.KindNetwork))
}

func TestLogBatch_DecodesResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var tasks []model.Task
		require.NoError(t, json.NewDecoder(r.Body).Decode(&tasks))
		assert.Len(t, tasks, 2)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"partial_success","logged":1,"errors":["Task 'b': Issue is invalid"]}`))
	})

	result, err := c.LogBatch(context.Background(), []model.Task{{ID: "a"}, {ID: "b"}})

	require.NoError(t, err)
	assert.Equal(t, constants.BatchPartialSuccess, result.Status)
	assert.Equal(t, 1, result.Logged)
	assert.Equal(t, []string{"Task 'b': Issue is invalid"}, result.Errors)
}

func TestLogBatch_OutlastsRegularTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/planner/log_batch" {
			_, _ = w.Write([]byte(`{"status":"success","logged":1}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL, 100*time.Millisecond)

	_, err := c.ListProfiles(context.Background())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNetwork))

	result, err := c.LogBatch(context.Background(), []model.Task{{ID: "a"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Logged)
}
