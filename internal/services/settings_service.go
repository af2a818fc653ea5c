package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	apperrors "redmine-planner.com/redmine-planner/internal/errors"
	repository "redmine-planner.com/redmine-planner/internal/repositories"
	"redmine-planner.com/redmine-planner/pkg/constants"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

type SettingsService struct {
	repo      *repository.SettingsRepository
	connector *Connector
}

func NewSettingsService(repo *repository.SettingsRepository, connector *Connector) *SettingsService {
	return &SettingsService{repo: repo, connector: connector}
}

func (s *SettingsService) Get(ctx context.Context) (model.Settings, error) {
	return s.repo.Get(ctx)
}

// Save stores the settings and drops the current Redmine connection so the
// next call picks up the new key and URL.
func (s *SettingsService) Save(ctx context.Context, settings model.Settings) (model.Settings, error) {
	settings.APIKey = strings.TrimSpace(settings.APIKey)
	settings.RedmineURL = strings.TrimSpace(settings.RedmineURL)
	settings.ApplyDefaults()

	if err := validateSettings(settings); err != nil {
		return model.Settings{}, err
	}
	if err := s.repo.Save(ctx, &settings); err != nil {
		return model.Settings{}, err
	}

	s.connector.Reset()
	log.WithField("redmine_url", settings.RedmineURL).Info("settings saved")
	return settings, nil
}

func validateSettings(s model.Settings) error {
	u, err := url.Parse(s.RedmineURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.Validation("redmine_url must be an absolute URL")
	}

	clocks := map[string]string{
		"alert_time":          s.AlertTime,
		"auto_log_time":       s.AutoLogTime,
		"calendar_start_time": s.CalendarStartTime,
		"calendar_end_time":   s.CalendarEndTime,
	}
	for field, value := range clocks {
		if _, err := time.Parse(constants.ClockLayout, value); err != nil {
			return apperrors.Validation(field + " must be HH:MM")
		}
	}

	if s.CalendarStartTime >= s.CalendarEndTime {
		return apperrors.Validation("calendar_start_time must be before calendar_end_time")
	}
	return nil
}
