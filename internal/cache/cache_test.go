package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "redmine-planner.com/redmine-planner/pkg/models"
)

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	issues := []model.Issue{{ID: 7, Subject: "Fix login", ProjectID: 3}}
	require.NoError(t, c.Set(ctx, IssuesKey(3), issues, time.Minute))

	var got []model.Issue
	found, err := c.Get(ctx, IssuesKey(3), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, issues, got)

	found, err = c.Get(ctx, IssuesKey(4), &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, ProjectsKey, []model.Project{{ID: 1, Name: "Core"}}, time.Minute))

	now = now.Add(2 * time.Minute)

	var got []model.Project
	found, err := c.Get(ctx, ProjectsKey, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, TimeEntriesKey, []int{1}, 0))
	require.NoError(t, c.Delete(ctx, TimeEntriesKey, ProjectsKey))

	var got []int
	found, err := c.Get(ctx, TimeEntriesKey, &got)
	require.NoError(t, err)
	assert.False(t, found)
}
