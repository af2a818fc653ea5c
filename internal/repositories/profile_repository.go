package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "redmine-planner.com/redmine-planner/internal/errors"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) List(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.WithContext(ctx).Order("name asc").Find(&profiles).Error
	return profiles, errors.Wrap(err, "listing profiles")
}

// Save creates the profile or overwrites the one with the same name.
func (r *ProfileRepository) Save(ctx context.Context, profile *model.Profile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"project_id", "issue_id", "activity_id", "comments", "rd_function_team", "project_name", "issue_name", "updated_at"}),
	}).Create(profile).Error
	return errors.Wrapf(err, "saving profile %q", profile.Name)
}

func (r *ProfileRepository) Delete(ctx context.Context, name string) error {
	res := r.db.WithContext(ctx).Delete(&model.Profile{}, "name = ?", name)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "deleting profile %q", name)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrProfileNotFound
	}
	return nil
}

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// List returns history entries, most recently used first.
func (r *HistoryRepository) List(ctx context.Context) ([]model.HistoryEntry, error) {
	var entries []model.HistoryEntry
	err := r.db.WithContext(ctx).Order("last_used_at desc").Find(&entries).Error
	return entries, errors.Wrap(err, "listing task history")
}

func (r *HistoryRepository) Record(ctx context.Context, entry *model.HistoryEntry) error {
	if entry.LastUsedAt.IsZero() {
		entry.LastUsedAt = time.Now().UTC()
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"project_id", "issue_id", "activity_id", "comments", "rd_function_team", "last_used_at"}),
	}).Create(entry).Error
	return errors.Wrapf(err, "recording history for %q", entry.Name)
}

func (r *HistoryRepository) Delete(ctx context.Context, name string) error {
	res := r.db.WithContext(ctx).Delete(&model.HistoryEntry{}, "name = ?", name)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "deleting history %q", name)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrHistoryNotFound
	}
	return nil
}

const settingsRowID = 1

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the stored settings with defaults filled in. A missing row is not an error.
func (r *SettingsRepository) Get(ctx context.Context) (model.Settings, error) {
	var s model.Settings
	err := r.db.WithContext(ctx).First(&s, settingsRowID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Settings{}, errors.Wrap(err, "loading settings")
	}
	s.ApplyDefaults()
	return s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s *model.Settings) error {
	s.ID = settingsRowID
	return errors.Wrap(r.db.WithContext(ctx).Save(s).Error, "saving settings")
}
