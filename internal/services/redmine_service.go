package services

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"redmine-planner.com/redmine-planner/internal/cache"
	apperrors "redmine-planner.com/redmine-planner/internal/errors"
	"redmine-planner.com/redmine-planner/internal/redmine"
	"redmine-planner.com/redmine-planner/pkg/constants"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

const (
	ScopeMe  = "me"
	ScopeAll = "all"

	syncWindowDays = 30
)

// cachedEntries is the time entry window stored by Sync.
type cachedEntries struct {
	From    string            `json:"from"`
	To      string            `json:"to"`
	Entries []model.TimeEntry `json:"entries"`
}

// RedmineService proxies Redmine metadata and time entries, caching what is
// slow to fetch and rarely changes.
type RedmineService struct {
	connector *Connector
	cache     cache.Cache
	ttl       time.Duration
	now       func() time.Time
}

func NewRedmineService(connector *Connector, c cache.Cache, ttl time.Duration) *RedmineService {
	return &RedmineService{
		connector: connector,
		cache:     c,
		ttl:       ttl,
		now:       time.Now,
	}
}

func (s *RedmineService) Projects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if s.cached(ctx, cache.ProjectsKey, &projects) {
		return projects, nil
	}

	gateway, err := s.connector.Gateway(ctx)
	if err != nil {
		return nil, err
	}
	projects, err = gateway.Projects(ctx)
	if err != nil {
		return nil, remoteError(err)
	}

	s.store(ctx, cache.ProjectsKey, projects)
	return projects, nil
}

// Issues lists open issues of a project. Only the "me" scope is cached.
func (s *RedmineService) Issues(ctx context.Context, projectID int, scope string) ([]model.Issue, error) {
	if scope == "" {
		scope = ScopeMe
	}
	if scope != ScopeMe && scope != ScopeAll {
		return nil, apperrors.Validation("scope must be \"me\" or \"all\"")
	}

	key := cache.MyIssuesKey
	if projectID > 0 {
		key = cache.IssuesKey(projectID)
	}

	var issues []model.Issue
	if scope == ScopeMe && s.cached(ctx, key, &issues) {
		return issues, nil
	}

	gateway, err := s.connector.Gateway(ctx)
	if err != nil {
		return nil, err
	}
	issues, err = gateway.Issues(ctx, projectID, scope)
	if err != nil {
		return nil, remoteError(err)
	}
	if issues == nil {
		issues = []model.Issue{}
	}

	if scope == ScopeMe {
		s.store(ctx, key, issues)
	}
	return issues, nil
}

// Issue returns the issue with its journals. When Redmine cannot answer, a
// reduced view is built from the synced issue list if the issue is there.
func (s *RedmineService) Issue(ctx context.Context, issueID int) (*model.IssueDetails, error) {
	var details model.IssueDetails
	if s.cached(ctx, cache.IssueKey(issueID), &details) {
		return &details, nil
	}

	gateway, err := s.connector.Gateway(ctx)
	if err != nil {
		return nil, err
	}

	fetched, err := gateway.Issue(ctx, issueID)
	if err != nil {
		log.WithError(err).WithField("issue_id", issueID).Warn("failed to fetch issue from redmine")
		if fallback := s.issueFromSync(ctx, issueID); fallback != nil {
			return fallback, nil
		}
		return nil, remoteError(err)
	}

	s.store(ctx, cache.IssueKey(issueID), fetched)
	return fetched, nil
}

func (s *RedmineService) issueFromSync(ctx context.Context, issueID int) *model.IssueDetails {
	var issues []model.Issue
	if !s.cached(ctx, cache.MyIssuesKey, &issues) {
		return nil
	}

	for _, i := range issues {
		if i.ID != issueID {
			continue
		}

		project := model.Project{ID: i.ProjectID, Name: "Unknown Project"}
		var projects []model.Project
		if s.cached(ctx, cache.ProjectsKey, &projects) {
			for _, p := range projects {
				if p.ID == i.ProjectID {
					project.Name = p.Name
					break
				}
			}
		}

		return &model.IssueDetails{
			ID:       i.ID,
			Subject:  i.Subject,
			Status:   "Unknown",
			Project:  project,
			Journals: []model.Journal{},
		}
	}
	return nil
}

func (s *RedmineService) Activities() map[int]string {
	return redmine.Activities
}

// TimeEntries answers from the synced window when it covers the range.
func (s *RedmineService) TimeEntries(ctx context.Context, from, to string) ([]model.TimeEntry, error) {
	var window cachedEntries
	if s.cached(ctx, cache.TimeEntriesKey, &window) && covers(window, from, to) {
		return filterEntries(window.Entries, from, to), nil
	}

	gateway, err := s.connector.Gateway(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := gateway.TimeEntries(ctx, from, to)
	if err != nil {
		return nil, remoteError(err)
	}
	if entries == nil {
		entries = []model.TimeEntry{}
	}
	return entries, nil
}

func (s *RedmineService) CreateTimeEntry(ctx context.Context, entry model.TimeEntryRequest) (int, error) {
	if err := validateEntry(entry); err != nil {
		return 0, err
	}

	gateway, err := s.connector.Gateway(ctx)
	if err != nil {
		return 0, err
	}
	id, err := gateway.CreateTimeEntry(ctx, entry)
	if err != nil {
		return 0, remoteError(err)
	}

	s.invalidateEntries(ctx)
	return id, nil
}

func (s *RedmineService) UpdateTimeEntry(ctx context.Context, id int, entry model.TimeEntryRequest) error {
	if err := validateEntry(entry); err != nil {
		return err
	}

	gateway, err := s.connector.Gateway(ctx)
	if err != nil {
		return err
	}
	if err := gateway.UpdateTimeEntry(ctx, id, entry); err != nil {
		return remoteError(err)
	}

	s.invalidateEntries(ctx)
	return nil
}

func (s *RedmineService) DeleteTimeEntry(ctx context.Context, id int) error {
	gateway, err := s.connector.Gateway(ctx)
	if err != nil {
		return err
	}
	if err := gateway.DeleteTimeEntry(ctx, id); err != nil {
		return remoteError(err)
	}

	s.invalidateEntries(ctx)
	return nil
}

// DailyHours sums today's logged hours. Redmine failures count as zero.
func (s *RedmineService) DailyHours(ctx context.Context) (float64, error) {
	today := s.now().Format(constants.DateLayout)

	entries, err := s.TimeEntries(ctx, today, today)
	if errors.Is(err, apperrors.ErrRedmineNotConfigured) {
		return 0, err
	}
	if err != nil {
		log.WithError(err).Warn("failed to fetch daily hours")
		return 0, nil
	}

	total := 0.0
	for _, e := range entries {
		total += e.Hours
	}
	return total, nil
}

// Sync refreshes the cached projects, assigned issues, activities and the last
// thirty days of time entries.
func (s *RedmineService) Sync(ctx context.Context) error {
	gateway, err := s.connector.Gateway(ctx)
	if err != nil {
		return err
	}

	today := s.now()
	window := cachedEntries{
		From: today.AddDate(0, 0, -syncWindowDays).Format(constants.DateLayout),
		To:   today.Format(constants.DateLayout),
	}

	var (
		projects []model.Project
		issues   []model.Issue
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = gateway.Projects(gctx)
		return errors.Wrap(err, "syncing projects")
	})
	g.Go(func() error {
		var err error
		issues, err = gateway.Issues(gctx, 0, ScopeMe)
		return errors.Wrap(err, "syncing issues")
	})
	g.Go(func() error {
		var err error
		window.Entries, err = gateway.TimeEntries(gctx, window.From, window.To)
		return errors.Wrap(err, "syncing time entries")
	})
	if err := g.Wait(); err != nil {
		return remoteError(err)
	}

	s.store(ctx, cache.ProjectsKey, projects)
	s.store(ctx, cache.MyIssuesKey, issues)
	s.store(ctx, cache.ActivitiesKey, redmine.Activities)
	s.store(ctx, cache.TimeEntriesKey, window)

	log.WithFields(log.Fields{
		"projects":     len(projects),
		"issues":       len(issues),
		"time_entries": len(window.Entries),
	}).Info("sync completed")
	return nil
}

func (s *RedmineService) cached(ctx context.Context, key string, dest interface{}) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("cache read failed")
		return false
	}
	return found
}

func (s *RedmineService) store(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func (s *RedmineService) invalidateEntries(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.TimeEntriesKey); err != nil {
		log.WithError(err).Warn("failed to invalidate time entry cache")
	}
}

func covers(window cachedEntries, from, to string) bool {
	if from == "" || to == "" {
		return false
	}
	return from >= window.From && to <= window.To
}

func filterEntries(entries []model.TimeEntry, from, to string) []model.TimeEntry {
	out := []model.TimeEntry{}
	for _, e := range entries {
		if e.SpentOn >= from && e.SpentOn <= to {
			out = append(out, e)
		}
	}
	return out
}

func validateEntry(entry model.TimeEntryRequest) error {
	if !model.Present(entry.IssueID) && !model.Present(entry.ProjectID) {
		return apperrors.Validation("project_id or issue_id is required")
	}
	if entry.Hours <= 0 {
		return apperrors.Validation("hours must be greater than 0")
	}
	if _, err := time.Parse(constants.DateLayout, entry.SpentOn); err != nil {
		return apperrors.Validation("spent_on must be a YYYY-MM-DD date")
	}
	return nil
}

func asAPIError(err error) (*redmine.APIError, bool) {
	var apiErr *redmine.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// remoteError keeps the Redmine status and message; anything else is a failed call.
func remoteError(err error) error {
	if apiErr, ok := asAPIError(err); ok {
		return apperrors.Rejected(apiErr.StatusCode, apiErr.Message)
	}
	return apperrors.Rejected(http.StatusBadGateway, err.Error())
}
