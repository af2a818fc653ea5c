package cmd

import (
	"context"
	"time"

	"redmine-planner.com/redmine-planner/internal/client"
	config "redmine-planner.com/redmine-planner/internal/configs"
	"redmine-planner.com/redmine-planner/internal/planner"
	"redmine-planner.com/redmine-planner/pkg/constants"
)

// newPlanner wires a planner to the backend at cfg.BackendURL. The returned
// func releases the issue cache.
func newPlanner(cfg config.Config) (*planner.Planner, *client.Client, func()) {
	backend := client.New(cfg.BackendURL, cfg.HTTPTimeout)
	issues, closeCache := newCache(cfg, "redmine-planner:planner:")

	p := planner.New(backend,
		planner.WithSyncPolicy(planner.SyncPolicy(cfg.SyncPolicy)),
		planner.WithIssueCache(issues),
	)
	return p, backend, closeCache
}

// loadPlanner is newPlanner followed by the first refresh of the day, which
// may seed today from the last planned day.
func loadPlanner(ctx context.Context, cfg config.Config) (*planner.Planner, *client.Client, func(), error) {
	p, backend, done := newPlanner(cfg)
	if err := p.Refresh(ctx, false); err != nil {
		done()
		return nil, nil, nil, err
	}
	return p, backend, done, nil
}

func today() string {
	return time.Now().Format(constants.DateLayout)
}
