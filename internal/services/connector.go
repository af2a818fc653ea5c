package services

import (
	"context"
	"sync"
	"time"

	apperrors "redmine-planner.com/redmine-planner/internal/errors"
	"redmine-planner.com/redmine-planner/internal/redmine"
	repository "redmine-planner.com/redmine-planner/internal/repositories"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

// Gateway is the part of the Redmine REST API the backend uses.
type Gateway interface {
	Projects(ctx context.Context) ([]model.Project, error)
	Issues(ctx context.Context, projectID int, scope string) ([]model.Issue, error)
	Issue(ctx context.Context, issueID int) (*model.IssueDetails, error)
	TimeEntries(ctx context.Context, from, to string) ([]model.TimeEntry, error)
	CreateTimeEntry(ctx context.Context, entry model.TimeEntryRequest) (int, error)
	UpdateTimeEntry(ctx context.Context, id int, entry model.TimeEntryRequest) error
	DeleteTimeEntry(ctx context.Context, id int) error
}

type GatewayFactory func(url, apiKey string) Gateway

// Connector builds the Redmine gateway from the stored settings on first use
// and keeps it until the settings change.
type Connector struct {
	settings *repository.SettingsRepository
	factory  GatewayFactory

	mu      sync.Mutex
	gateway Gateway
}

func NewConnector(settings *repository.SettingsRepository, timeout time.Duration) *Connector {
	return NewConnectorWithFactory(settings, func(url, apiKey string) Gateway {
		return redmine.NewClient(url, apiKey, timeout)
	})
}

func NewConnectorWithFactory(settings *repository.SettingsRepository, factory GatewayFactory) *Connector {
	return &Connector{settings: settings, factory: factory}
}

func (c *Connector) Gateway(ctx context.Context) (Gateway, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gateway != nil {
		return c.gateway, nil
	}

	s, err := c.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !s.Configured() {
		return nil, apperrors.ErrRedmineNotConfigured
	}

	c.gateway = c.factory(s.RedmineURL, s.APIKey)
	return c.gateway, nil
}

func (c *Connector) Reset() {
	c.mu.Lock()
	c.gateway = nil
	c.mu.Unlock()
}
