package http

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	middleware "redmine-planner.com/redmine-planner/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, rateLimitPerMinute int) {
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.CORS())
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute))

	api := e.Group("/api")

	api.GET("/tasks", h.ListTasks)
	api.POST("/tasks", h.CreateTask)
	api.PUT("/tasks/:id", h.UpdateTask)
	api.DELETE("/tasks/:id", h.DeleteTask)
	api.POST("/planner/log_batch", h.LogBatch)

	api.GET("/profiles", h.ListProfiles)
	api.POST("/profiles", h.SaveProfile)
	api.DELETE("/profile", h.DeleteProfile)
	api.GET("/task_history", h.ListHistory)
	api.DELETE("/task_history", h.DeleteHistory)

	api.GET("/settings", h.GetSettings)
	api.POST("/settings", h.SaveSettings)

	rm := api.Group("/redmine")
	rm.GET("/projects", h.ListProjects)
	rm.GET("/issues", h.ListIssues)
	rm.GET("/issue/:id", h.GetIssue)
	rm.GET("/activities", h.ListActivities)
	rm.GET("/daily_hours", h.DailyHours)
	rm.GET("/time_entries", h.ListTimeEntries)
	rm.POST("/time_entries", h.CreateTimeEntry)
	rm.PUT("/time_entries/:id", h.UpdateTimeEntry)
	rm.DELETE("/time_entries/:id", h.DeleteTimeEntry)

	api.POST("/sync", h.Sync)
}
