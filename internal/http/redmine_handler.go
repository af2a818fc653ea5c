package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "redmine-planner.com/redmine-planner/internal/errors"
	"redmine-planner.com/redmine-planner/internal/http/validators"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

func (h *Handler) ListProjects(c echo.Context) error {
	projects, err := h.redmineService.Projects(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, projects)
}

func (h *Handler) ListIssues(c echo.Context) error {
	projectID := 0
	if raw := c.QueryParam("project_id"); raw != "" {
		id, err := validators.PositiveInt("project_id", raw)
		if err != nil {
			return err
		}
		projectID = id
	}

	issues, err := h.redmineService.Issues(c.Request().Context(), projectID, c.QueryParam("scope"))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, issues)
}

func (h *Handler) GetIssue(c echo.Context) error {
	id, err := validators.PositiveInt("id", c.Param("id"))
	if err != nil {
		return err
	}

	details, err := h.redmineService.Issue(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, details)
}

func (h *Handler) ListActivities(c echo.Context) error {
	return c.JSON(http.StatusOK, h.redmineService.Activities())
}

func (h *Handler) ListTimeEntries(c echo.Context) error {
	from, to := c.QueryParam("from_date"), c.QueryParam("to_date")
	if err := validators.ValidateOptionalDate("from_date", from); err != nil {
		return err
	}
	if err := validators.ValidateOptionalDate("to_date", to); err != nil {
		return err
	}

	entries, err := h.redmineService.TimeEntries(c.Request().Context(), from, to)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) CreateTimeEntry(c echo.Context) error {
	var entry model.TimeEntryRequest
	if err := c.Bind(&entry); err != nil {
		return fail(apperrors.ErrInvalidPayload)
	}
	if err := validators.ValidateTimeEntryRequest(&entry); err != nil {
		return err
	}

	id, err := h.redmineService.CreateTimeEntry(c.Request().Context(), entry)
	if err != nil {
		return fail(err)
	}
	return ok(c, "Time entry created", echo.Map{"id": id})
}

func (h *Handler) UpdateTimeEntry(c echo.Context) error {
	id, err := validators.PositiveInt("id", c.Param("id"))
	if err != nil {
		return err
	}

	var entry model.TimeEntryRequest
	if err := c.Bind(&entry); err != nil {
		return fail(apperrors.ErrInvalidPayload)
	}
	if err := validators.ValidateTimeEntryRequest(&entry); err != nil {
		return err
	}

	if err := h.redmineService.UpdateTimeEntry(c.Request().Context(), id, entry); err != nil {
		return fail(err)
	}
	return ok(c, "Time entry updated", nil)
}

func (h *Handler) DeleteTimeEntry(c echo.Context) error {
	id, err := validators.PositiveInt("id", c.Param("id"))
	if err != nil {
		return err
	}

	if err := h.redmineService.DeleteTimeEntry(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return ok(c, "Time entry deleted", nil)
}

func (h *Handler) DailyHours(c echo.Context) error {
	hours, err := h.redmineService.DailyHours(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"hours": hours})
}

func (h *Handler) Sync(c echo.Context) error {
	if err := h.redmineService.Sync(c.Request().Context()); err != nil {
		return fail(err)
	}
	return ok(c, "Sync completed successfully", nil)
}
