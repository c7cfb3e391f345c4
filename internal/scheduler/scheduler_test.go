package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	calls atomic.Int32
	jobs  atomic.Value
	err   error
}

func (r *countingRunner) Run(_ context.Context, jobs []string) error {
	r.jobs.Store(jobs)
	r.calls.Add(1)
	return r.err
}

func TestScheduler_InitialRun(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(Config{
		NightlyRefreshCron: "0 2 * * *",
		InitialRun:         true,
		Jobs:               []string{"singles"},
	}, runner)

	require.NoError(t, s.Start(context.Background()))
	s.Stop()

	assert.Equal(t, int32(1), runner.calls.Load())
	assert.Equal(t, []string{"singles"}, runner.jobs.Load())
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	runner := &countingRunner{err: errors.New("db down")}
	s := NewScheduler(Config{NightlyRefreshCron: "@every 1s"}, runner)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.Next().IsZero())

	assert.Eventually(t, func() bool { return runner.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond,
		"A failing run is logged and the schedule keeps going")
	s.Stop()
}

func TestScheduler_InvalidCron(t *testing.T) {
	s := NewScheduler(Config{NightlyRefreshCron: "not a cron"}, &countingRunner{})
	err := s.Start(context.Background())
	assert.ErrorContains(t, err, "failed to schedule nightly refresh")
}
