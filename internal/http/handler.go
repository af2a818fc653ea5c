package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	apperrors "redmine-planner.com/redmine-planner/internal/errors"
	"redmine-planner.com/redmine-planner/internal/http/validators"
	"redmine-planner.com/redmine-planner/internal/services"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

type Handler struct {
	taskService     *services.TaskService
	logService      *services.LogService
	profileService  *services.ProfileService
	redmineService  *services.RedmineService
	settingsService *services.SettingsService
}

func NewHandler(
	taskService *services.TaskService,
	logService *services.LogService,
	profileService *services.ProfileService,
	redmineService *services.RedmineService,
	settingsService *services.SettingsService,
) *Handler {
	return &Handler{
		taskService:     taskService,
		logService:      logService,
		profileService:  profileService,
		redmineService:  redmineService,
		settingsService: settingsService,
	}
}

// fail turns a service error into the HTTP error echo renders.
func fail(err error) error {
	code := apperrors.StatusCode(err)
	if code >= http.StatusInternalServerError && !apperrors.IsKind(err, apperrors.KindRemoteRejection) {
		log.WithError(err).Error("request failed")
	}
	return echo.NewHTTPError(code, apperrors.Message(err))
}

func ok(c echo.Context, message string, extra echo.Map) error {
	body := echo.Map{"status": "success", "message": message}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(http.StatusOK, body)
}

func (h *Handler) ListTasks(c echo.Context) error {
	date := c.QueryParam("date_str")
	if err := validators.ValidateOptionalDate("date_str", date); err != nil {
		return err
	}
	noAutoCopy, err := validators.OptionalBool("no_auto_copy", c.QueryParam("no_auto_copy"))
	if err != nil {
		return err
	}

	tasks, err := h.taskService.List(c.Request().Context(), date, noAutoCopy)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateTask(c echo.Context) error {
	var task model.Task
	if err := c.Bind(&task); err != nil {
		return fail(apperrors.ErrInvalidPayload)
	}
	if err := validators.ValidateTaskRequest(&task); err != nil {
		return err
	}

	if err := h.taskService.Save(c.Request().Context(), &task); err != nil {
		return fail(err)
	}
	return ok(c, "Task saved", echo.Map{"task": task})
}

func (h *Handler) UpdateTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return fail(apperrors.ErrTaskIDRequired)
	}

	var task model.Task
	if err := c.Bind(&task); err != nil {
		return fail(apperrors.ErrInvalidPayload)
	}
	task.ID = id
	if err := validators.ValidateTaskRequest(&task); err != nil {
		return err
	}

	if err := h.taskService.Update(c.Request().Context(), id, &task); err != nil {
		return fail(err)
	}
	return ok(c, "Task updated", nil)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return fail(apperrors.ErrTaskIDRequired)
	}
	fromRedmine, err := validators.OptionalBool("delete_from_redmine", c.QueryParam("delete_from_redmine"))
	if err != nil {
		return err
	}

	if err := h.taskService.Delete(c.Request().Context(), id, fromRedmine); err != nil {
		return fail(err)
	}
	return ok(c, "Task deleted", nil)
}

// LogBatch always answers 200; the outcome is in the body status.
func (h *Handler) LogBatch(c echo.Context) error {
	var tasks []model.Task
	if err := c.Bind(&tasks); err != nil {
		return fail(apperrors.ErrInvalidPayload)
	}

	result := h.logService.LogBatch(c.Request().Context(), tasks)
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ListProfiles(c echo.Context) error {
	profiles, err := h.profileService.List(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, profiles)
}

func (h *Handler) SaveProfile(c echo.Context) error {
	var profile model.Profile
	if err := c.Bind(&profile); err != nil {
		return fail(apperrors.ErrInvalidPayload)
	}
	if err := validators.ValidateProfileRequest(&profile); err != nil {
		return err
	}

	profiles, err := h.profileService.Save(c.Request().Context(), profile)
	if err != nil {
		return fail(err)
	}
	return ok(c, "Profile saved", echo.Map{"profiles": profiles})
}

func (h *Handler) DeleteProfile(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	profiles, err := h.profileService.Delete(c.Request().Context(), name)
	if err != nil {
		return fail(err)
	}
	return ok(c, "Profile deleted", echo.Map{"profiles": profiles})
}

func (h *Handler) ListHistory(c echo.Context) error {
	entries, err := h.profileService.History(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) DeleteHistory(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	if err := h.profileService.DeleteHistory(c.Request().Context(), name); err != nil {
		return fail(err)
	}
	return ok(c, "History entry deleted", nil)
}

func (h *Handler) GetSettings(c echo.Context) error {
	settings, err := h.settingsService.Get(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, settings)
}

func (h *Handler) SaveSettings(c echo.Context) error {
	var settings model.Settings
	if err := c.Bind(&settings); err != nil {
		return fail(apperrors.ErrInvalidPayload)
	}

	saved, err := h.settingsService.Save(c.Request().Context(), settings)
	if err != nil {
		return fail(err)
	}
	return ok(c, "Settings saved", echo.Map{"settings": saved})
}
