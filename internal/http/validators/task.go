package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"redmine-planner.com/redmine-planner/pkg/constants"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

func ValidateTaskRequest(t *model.Task) error {
	if strings.TrimSpace(t.ID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if t.PlannedHours < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "planned_hours must not be negative")
	}
	if t.Date != "" {
		return ValidateDate("date", t.Date)
	}
	return nil
}

func ValidateProfileRequest(p *model.Profile) error {
	if strings.TrimSpace(p.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if p.ProjectID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "project_id is required")
	}
	if p.ActivityID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "activity_id is required")
	}
	return nil
}

func ValidateTimeEntryRequest(e *model.TimeEntryRequest) error {
	if !model.Present(e.IssueID) && !model.Present(e.ProjectID) {
		return echo.NewHTTPError(http.StatusBadRequest, "project_id or issue_id is required")
	}
	if e.Hours <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "hours must be greater than 0")
	}
	if e.ActivityID <= 0 {
		e.ActivityID = constants.DefaultActivityID
	}
	return ValidateDate("spent_on", e.SpentOn)
}

// ValidateDate accepts YYYY-MM-DD dates.
func ValidateDate(field, value string) error {
	if _, err := time.Parse(constants.DateLayout, value); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, field+" must be a YYYY-MM-DD date")
	}
	return nil
}

// ValidateOptionalDate accepts an empty value or a YYYY-MM-DD date.
func ValidateOptionalDate(field, value string) error {
	if value == "" {
		return nil
	}
	return ValidateDate(field, value)
}

// PositiveInt parses a path or query value that must be a positive integer.
func PositiveInt(field, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, field+" must be a positive integer")
	}
	return n, nil
}

// OptionalBool parses a query flag; empty means false.
func OptionalBool(field, value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, echo.NewHTTPError(http.StatusBadRequest, field+" must be true or false")
	}
	return b, nil
}
