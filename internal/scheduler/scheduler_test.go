package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour, minute, second int) time.Time {
	return time.Date(2026, 10, day, hour, minute, second, 0, time.Local)
}

func TestTick_FiresOncePerMinute(t *testing.T) {
	s, err := New("17:00", "18:00")
	require.NoError(t, err)

	assert.Empty(t, s.Tick(at(19, 16, 59, 59)))
	assert.Equal(t, []Action{ActionAlert}, s.Tick(at(19, 17, 0, 1)))
	assert.Empty(t, s.Tick(at(19, 17, 0, 30)), "same minute fires once")
	assert.Empty(t, s.Tick(at(19, 17, 1, 0)))
	assert.Equal(t, []Action{ActionAutoLog}, s.Tick(at(19, 18, 0, 0)))
	assert.Equal(t, []Action{ActionAlert}, s.Tick(at(20, 17, 0, 0)), "fires again the next day")
}

func TestTick_BothActionsSameMinute(t *testing.T) {
	s, err := New("18:00", "18:00")
	require.NoError(t, err)

	assert.Equal(t, []Action{ActionAlert, ActionAutoLog}, s.Tick(at(19, 18, 0, 0)))
}

func TestTick_NoCatchUp(t *testing.T) {
	s, err := New("17:00", "18:00")
	require.NoError(t, err)

	assert.Empty(t, s.Tick(at(19, 17, 2, 0)))
	assert.Empty(t, s.Tick(at(19, 18, 5, 0)))
}

func TestSetTimes_NormalizesAndRejects(t *testing.T) {
	s, err := New("9:05", "18:00")
	require.NoError(t, err)

	alert, _ := s.Times()
	assert.Equal(t, "09:05", alert)

	require.Error(t, s.SetTimes("25:00", "18:00"))
	alert, autoLog := s.Times()
	assert.Equal(t, "09:05", alert)
	assert.Equal(t, "18:00", autoLog)

	_, err = New("later", "18:00")
	assert.Error(t, err)
}

func TestRun_RefreshesTimesAndStops(t *testing.T) {
	s, err := New("00:00", "00:00")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		calls int
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		s.Run(ctx, 10*time.Millisecond, Hooks{
			Times: func(context.Context) (string, string, error) {
				mu.Lock()
				defer mu.Unlock()
				calls++
				if calls > 1 {
					return "", "", errors.New("backend down")
				}
				return "12:34", "23:45", nil
			},
			Fire: func(context.Context, Action) {},
		})
		close(done)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls > 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	alert, autoLog := s.Times()
	assert.Equal(t, "12:34", alert)
	assert.Equal(t, "23:45", autoLog)
}
