package validators

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redmine-planner.com/redmine-planner/pkg/constants"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

func requireBadRequest(t *testing.T, err error, message string) {
	t.Helper()
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Equal(t, message, httpErr.Message)
}

func TestValidateTaskRequest(t *testing.T) {
	requireBadRequest(t, ValidateTaskRequest(&model.Task{Name: "x"}), "id is required")
	requireBadRequest(t, ValidateTaskRequest(&model.Task{ID: "a", Name: "  "}), "name is required")
	requireBadRequest(t, ValidateTaskRequest(&model.Task{ID: "a", Name: "x", PlannedHours: -1}), "planned_hours must not be negative")
	requireBadRequest(t, ValidateTaskRequest(&model.Task{ID: "a", Name: "x", Date: "19/10/2026"}), "date must be a YYYY-MM-DD date")
	assert.NoError(t, ValidateTaskRequest(&model.Task{ID: "a", Name: "x", Date: "2026-10-19"}))
}

func TestValidateTimeEntryRequest_DefaultsActivity(t *testing.T) {
	entry := &model.TimeEntryRequest{ProjectID: model.IntPtr(5), Hours: 1, SpentOn: "2026-10-19"}

	require.NoError(t, ValidateTimeEntryRequest(entry))
	assert.Equal(t, constants.DefaultActivityID, entry.ActivityID)

	requireBadRequest(t, ValidateTimeEntryRequest(&model.TimeEntryRequest{Hours: 1, SpentOn: "2026-10-19"}), "project_id or issue_id is required")
}

func TestPositiveInt(t *testing.T) {
	n, err := PositiveInt("id", "42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = PositiveInt("id", "-3")
	requireBadRequest(t, err, "id must be a positive integer")
}

func TestOptionalBool(t *testing.T) {
	b, err := OptionalBool("no_auto_copy", "")
	require.NoError(t, err)
	assert.False(t, b)

	b, err = OptionalBool("no_auto_copy", "true")
	require.NoError(t, err)
	assert.True(t, b)

	_, err = OptionalBool("no_auto_copy", "maybe")
	requireBadRequest(t, err, "no_auto_copy must be true or false")
}
