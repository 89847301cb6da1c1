package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bullscan/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	failures int32 // fail this many times before succeeding
	calls    int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }
func (j *fakeJob) Run(ctx context.Context) error {
	n := atomic.AddInt32(&j.calls, 1)
	if n <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func newScheduler(retries int) *Scheduler {
	return New(Options{Location: time.UTC, MaxRetries: retries, RetryDelay: time.Millisecond}, logger.Nop())
}

func TestAddJob(t *testing.T) {
	s := newScheduler(0)
	require.NoError(t, s.AddJob(&fakeJob{name: "scan", schedule: "0 30 16 * * 1-5"}))

	err := s.AddJob(&fakeJob{name: "scan", schedule: "0 30 16 * * 1-5"})
	assert.Error(t, err)

	err = s.AddJob(&fakeJob{name: "bad", schedule: "every day"})
	assert.Error(t, err)
}

func TestRunNow_RetriesUntilSuccess(t *testing.T) {
	s := newScheduler(3)
	job := &fakeJob{name: "scan", schedule: "@daily", failures: 2}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunNow(context.Background(), "scan"))
	assert.Equal(t, int32(3), job.calls)

	stats := s.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].TotalRuns)
	assert.Equal(t, 1.0, stats[0].SuccessRate)
	assert.Empty(t, stats[0].LastError)
}

func TestRunNow_GivesUp(t *testing.T) {
	s := newScheduler(1)
	job := &fakeJob{name: "scan", schedule: "@daily", failures: 10}
	require.NoError(t, s.AddJob(job))

	err := s.RunNow(context.Background(), "scan")
	require.Error(t, err)
	assert.Equal(t, int32(2), job.calls)

	stats := s.Stats()
	assert.Equal(t, 0.0, stats[0].SuccessRate)
	assert.Equal(t, "transient", stats[0].LastError)
}

func TestRunNow_UnknownJob(t *testing.T) {
	assert.Error(t, newScheduler(0).RunNow(context.Background(), "nope"))
}

func TestNextRun(t *testing.T) {
	s := newScheduler(0)
	require.NoError(t, s.AddJob(&fakeJob{name: "scan", schedule: "0 30 16 * * 1-5"}))

	next, err := s.NextRun("scan")
	require.NoError(t, err)
	assert.True(t, next.After(time.Now()))
	assert.Equal(t, 16, next.Hour())
	assert.Equal(t, 30, next.Minute())
	assert.NotEqual(t, time.Saturday, next.Weekday())
	assert.NotEqual(t, time.Sunday, next.Weekday())
}

func TestJobHistory_Limit(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+5; i++ {
		h.Add(JobResult{Success: i%2 == 0})
	}
	assert.Len(t, h.Results, historyLimit)
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)
}
