package cmd

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redmine-planner.com/redmine-planner/internal/planner"
	"redmine-planner.com/redmine-planner/internal/scheduler"
	"redmine-planner.com/redmine-planner/pkg/constants"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

// dayBackend stores tasks per day and copies the last planned day into an
// empty today unless asked not to.
type dayBackend struct {
	planner.Backend

	mu      sync.Mutex
	days    map[string][]model.Task
	batches [][]model.Task
	nextID  int
}

func (b *dayBackend) ListTasks(_ context.Context, date string, noAutoCopy bool) ([]model.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.days[date]) == 0 && !noAutoCopy {
		var earlier []string
		for d, tasks := range b.days {
			if d < date && len(tasks) > 0 {
				earlier = append(earlier, d)
			}
		}
		if len(earlier) > 0 {
			sort.Strings(earlier)
			for _, t := range b.days[earlier[len(earlier)-1]] {
				t.ID = t.ID + "@" + date
				t.Date = date
				t.IsLogged = false
				t.TimeEntryID = nil
				b.days[date] = append(b.days[date], t)
			}
		}
	}
	return append([]model.Task(nil), b.days[date]...), nil
}

func (b *dayBackend) LogBatch(_ context.Context, tasks []model.Task) (model.BatchResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.batches = append(b.batches, tasks)
	for _, sent := range tasks {
		day := b.days[sent.Date]
		for i := range day {
			if day[i].ID == sent.ID {
				b.nextID++
				id := b.nextID
				day[i].IsLogged = true
				day[i].TimeEntryID = &id
			}
		}
	}
	return model.BatchResult{Status: constants.BatchSuccess, Logged: len(tasks)}, nil
}

func TestWatchHooks_AutoLogAfterMidnightCarriesTasksOver(t *testing.T) {
	backend := &dayBackend{days: map[string][]model.Task{
		"2026-10-18": {{ID: "standup", Name: "Standup", ProjectID: model.IntPtr(5), PlannedHours: 1, Date: "2026-10-18"}},
	}}

	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	var clockMu sync.Mutex
	clock := func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return now
	}
	setClock := func(t time.Time) {
		clockMu.Lock()
		defer clockMu.Unlock()
		now = t
	}

	p := planner.New(backend, planner.WithClock(clock))
	ctx := context.Background()
	require.NoError(t, p.Refresh(ctx, false))

	sched, err := scheduler.New(model.DefaultAlertTime, model.DefaultAutoLogTime)
	require.NoError(t, err)
	hooks := watchHooks(p, func(context.Context) (model.Settings, error) {
		return model.DefaultSettings(), nil
	})

	fireAt := func(at time.Time) {
		setClock(at)
		for _, action := range sched.Tick(at) {
			hooks.Fire(ctx, action)
		}
	}

	fireAt(time.Date(2026, 10, 18, 18, 0, 0, 0, time.UTC))
	fireAt(time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC))

	require.Len(t, backend.batches, 2)
	require.Len(t, backend.batches[1], 1)
	assert.Equal(t, "2026-10-19", backend.batches[1][0].Date)

	tasks := p.Tasks()
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].IsLogged)
	assert.Equal(t, "2026-10-19", tasks[0].Date)
}
