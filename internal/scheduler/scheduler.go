// Package scheduler fires the daily alert and auto-log actions at their
// configured wall clock minute.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"redmine-planner.com/redmine-planner/pkg/constants"
)

type Action string

const (
	ActionAlert   Action = "alert"
	ActionAutoLog Action = "auto_log"
)

// Hooks connect the scheduler to the rest of the planner.
// Times is asked for the current alert and auto-log times on every tick.
type Hooks struct {
	Times func(ctx context.Context) (alertAt, autoLogAt string, err error)
	Fire  func(ctx context.Context, action Action)
}

type Scheduler struct {
	mu        sync.Mutex
	alertAt   string
	autoLogAt string
	fired     map[Action]string
}

func New(alertAt, autoLogAt string) (*Scheduler, error) {
	s := &Scheduler{fired: make(map[Action]string)}
	if err := s.SetTimes(alertAt, autoLogAt); err != nil {
		return nil, err
	}
	return s, nil
}

// SetTimes replaces both times. Values are HH:MM; an invalid value leaves
// the previous times in place.
func (s *Scheduler) SetTimes(alertAt, autoLogAt string) error {
	alert, err := normalize(alertAt)
	if err != nil {
		return errors.Wrap(err, "alert time")
	}
	autoLog, err := normalize(autoLogAt)
	if err != nil {
		return errors.Wrap(err, "auto-log time")
	}

	s.mu.Lock()
	s.alertAt, s.autoLogAt = alert, autoLog
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) Times() (alertAt, autoLogAt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alertAt, s.autoLogAt
}

// Tick returns the actions due at now. Each action fires at most once per
// calendar minute; a minute that was never ticked is not caught up.
func (s *Scheduler) Tick(now time.Time) []Action {
	s.mu.Lock()
	defer s.mu.Unlock()

	clock := now.Format(constants.ClockLayout)
	minute := now.Format(constants.DateLayout + " " + constants.ClockLayout)

	var due []Action
	for _, c := range []struct {
		action Action
		at     string
	}{
		{ActionAlert, s.alertAt},
		{ActionAutoLog, s.autoLogAt},
	} {
		if c.at != clock || s.fired[c.action] == minute {
			continue
		}
		s.fired[c.action] = minute
		due = append(due, c.action)
	}
	return due
}

// Run ticks every interval until ctx is done. Fired actions run in their own
// goroutine and Run waits for them before returning.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration, hooks Hooks) {
	var wg sync.WaitGroup
	defer wg.Wait()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick := func(now time.Time) {
		s.refresh(ctx, hooks)
		for _, action := range s.Tick(now) {
			log.WithField("action", action).Info("scheduled action due")
			wg.Add(1)
			go func(a Action) {
				defer wg.Done()
				hooks.Fire(ctx, a)
			}(action)
		}
	}

	tick(time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			tick(now)
		}
	}
}

func (s *Scheduler) refresh(ctx context.Context, hooks Hooks) {
	if hooks.Times == nil {
		return
	}

	alertAt, autoLogAt, err := hooks.Times(ctx)
	if err != nil {
		log.WithError(err).Warn("keeping previous schedule")
		return
	}
	if err := s.SetTimes(alertAt, autoLogAt); err != nil {
		log.WithError(err).Warn("ignoring invalid schedule")
	}
}

func normalize(clock string) (string, error) {
	t, err := time.Parse(constants.ClockLayout, clock)
	if err != nil {
		return "", errors.Errorf("%q is not HH:MM", clock)
	}
	return t.Format(constants.ClockLayout), nil
}
