package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"redmine-planner.com/redmine-planner/internal/cache"
	config "redmine-planner.com/redmine-planner/internal/configs"
	repository "redmine-planner.com/redmine-planner/internal/repositories"
	"redmine-planner.com/redmine-planner/internal/services"
	"redmine-planner.com/redmine-planner/pkg/constants"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

type stubGateway struct {
	services.Gateway
	nextID int
}

func (s *stubGateway) CreateTimeEntry(context.Context, model.TimeEntryRequest) (int, error) {
	s.nextID++
	return s.nextID, nil
}

func (s *stubGateway) Projects(context.Context) ([]model.Project, error) {
	return []model.Project{{ID: 5, Name: "Core"}}, nil
}

func newTestServer(t *testing.T) (*echo.Echo, *repository.SettingsRepository) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	tasks := repository.NewTaskRepository(db)
	history := repository.NewHistoryRepository(db)
	settings := repository.NewSettingsRepository(db)
	profiles := repository.NewProfileRepository(db)

	gateway := &stubGateway{nextID: 500}
	connector := services.NewConnectorWithFactory(settings, func(string, string) services.Gateway { return gateway })
	memory := cache.NewMemoryCache()

	pool := services.NewPoolService(2, 4)
	t.Cleanup(func() { pool.Shutdown(context.Background()) })

	h := NewHandler(
		services.NewTaskService(tasks, history, connector),
		services.NewLogService(tasks, connector, pool, memory),
		services.NewProfileService(profiles, history),
		services.NewRedmineService(connector, memory, time.Hour),
		services.NewSettingsService(settings, connector),
	)

	e := echo.New()
	Register(e, h, 1000)
	return e, settings
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTasks_CreateListUpdateDelete(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/tasks", `{"id":"a","name":"Standup","project_id":5,"planned_hours":1,"date":"2026-10-19"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPut, "/api/tasks/a", `{"name":"Standup","project_id":5,"planned_hours":2,"date":"2026-10-19","is_paused":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/tasks?date_str=2026-10-19", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, 2.0, tasks[0].PlannedHours)
	assert.True(t, tasks[0].IsPaused)

	rec = do(e, http.MethodDelete, "/api/tasks/a", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodDelete, "/api/tasks/a", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTasks_CreateValidation(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/tasks", `{"id":"a","name":"","planned_hours":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/api/tasks", `{"id":"a","name":"x","is_logged":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "time entry id")

	rec = do(e, http.MethodGet, "/api/tasks?no_auto_copy=perhaps", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTask_NotFound(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodPut, "/api/tasks/ghost", `{"name":"x"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "task not found")
}

func TestLogBatch_NotConfiguredAnswersErrorStatus(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/planner/log_batch", `[{"id":"a","name":"x","project_id":5,"planned_hours":1}]`)

	require.Equal(t, http.StatusOK, rec.Code)
	var result model.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, constants.BatchError, result.Status)
	assert.Equal(t, "Redmine not configured", result.Error)
}

func TestLogBatch_LogsStoredTask(t *testing.T) {
	e, settings := newTestServer(t)
	s := model.DefaultSettings()
	s.APIKey = "key"
	require.NoError(t, settings.Save(context.Background(), &s))

	task := `{"id":"a","name":"Standup","project_id":5,"planned_hours":8,"date":"2026-10-19"}`
	require.Equal(t, http.StatusOK, do(e, http.MethodPost, "/api/tasks", task).Code)

	rec := do(e, http.MethodPost, "/api/planner/log_batch", "["+task+"]")
	require.Equal(t, http.StatusOK, rec.Code)
	var result model.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, constants.BatchSuccess, result.Status)
	assert.Equal(t, 1, result.Logged)

	rec = do(e, http.MethodGet, "/api/tasks?date_str=2026-10-19", "")
	var tasks []model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].IsLogged)
	require.NotNil(t, tasks[0].TimeEntryID)
	assert.Equal(t, 501, *tasks[0].TimeEntryID)
}

func TestProfiles_SaveListDelete(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/profiles", `{"name":"Standup","project_id":5,"issue_id":0,"activity_id":9}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/profiles", "")
	var profiles []model.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profiles))
	require.Len(t, profiles, 1)

	rec = do(e, http.MethodDelete, "/api/profile?name=Standup", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodDelete, "/api/profile?name=Standup", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRedmine_NotConfigured(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodGet, "/api/redmine/projects", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Redmine not configured")
}

func TestSettings_RoundTrip(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/settings", `{"api_key":"key","redmine_url":"https://redmine.example.com/","alert_time":"16:45"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/settings", "")
	var s model.Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, "16:45", s.AlertTime)
	assert.Equal(t, model.DefaultAutoLogTime, s.AutoLogTime)

	rec = do(e, http.MethodGet, "/api/redmine/projects", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
