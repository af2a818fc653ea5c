package services

import (
	"context"
	"strings"

	apperrors "redmine-planner.com/redmine-planner/internal/errors"
	repository "redmine-planner.com/redmine-planner/internal/repositories"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

// ProfileService manages saved templates and the task name history.
type ProfileService struct {
	profiles *repository.ProfileRepository
	history  *repository.HistoryRepository
}

func NewProfileService(profiles *repository.ProfileRepository, history *repository.HistoryRepository) *ProfileService {
	return &ProfileService{profiles: profiles, history: history}
}

func (s *ProfileService) List(ctx context.Context) ([]model.Profile, error) {
	return s.profiles.List(ctx)
}

// Save stores the profile and returns the updated list.
func (s *ProfileService) Save(ctx context.Context, profile model.Profile) ([]model.Profile, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return nil, apperrors.Validation("profile name is required")
	}
	if profile.ProjectID <= 0 {
		return nil, apperrors.Validation("project_id is required")
	}
	if profile.ActivityID <= 0 {
		return nil, apperrors.Validation("activity_id is required")
	}

	if err := s.profiles.Save(ctx, &profile); err != nil {
		return nil, err
	}
	return s.profiles.List(ctx)
}

func (s *ProfileService) Delete(ctx context.Context, name string) ([]model.Profile, error) {
	if err := s.profiles.Delete(ctx, name); err != nil {
		return nil, err
	}
	return s.profiles.List(ctx)
}

func (s *ProfileService) History(ctx context.Context) ([]model.HistoryEntry, error) {
	return s.history.List(ctx)
}

func (s *ProfileService) DeleteHistory(ctx context.Context, name string) error {
	return s.history.Delete(ctx, name)
}
