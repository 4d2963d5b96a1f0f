package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/gamedash/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	failures int32
	calls    int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	n := atomic.AddInt32(&j.calls, 1)
	if n <= atomic.LoadInt32(&j.failures) {
		return errors.New("transient failure")
	}
	return nil
}

func TestValidateSchedule(t *testing.T) {
	valid := []string{"0 */15 * * * *", "*/30 * * * *", "@hourly", "@every 10m"}
	for _, spec := range valid {
		assert.NoError(t, ValidateSchedule(spec), spec)
	}

	assert.Error(t, ValidateSchedule("every day"))
	assert.Error(t, ValidateSchedule(""))
}

func TestAddAndRemoveJob(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob(&fakeJob{name: "b", schedule: "@hourly"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "*/5 * * * *"}))
	assert.Error(t, s.AddJob(&fakeJob{name: "a", schedule: "@hourly"}), "duplicate name")
	assert.Error(t, s.AddJob(&fakeJob{name: "c", schedule: "not a schedule"}))

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())

	require.NoError(t, s.RemoveJob("a"))
	assert.Equal(t, []string{"b"}, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("a"))
}

func TestRunJobRetriesThenSucceeds(t *testing.T) {
	s := NewWithRetry(logger.Nop(), 3, time.Millisecond)
	job := &fakeJob{name: "reload", schedule: "@hourly", failures: 2}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	assert.Equal(t, int32(3), atomic.LoadInt32(&job.calls))

	history, err := s.GetJobHistory("reload")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.True(t, history.Results[0].Success)
	assert.Equal(t, 3, history.Results[0].Attempts)

	stats := s.GetJobStats()["reload"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1.0, stats.SuccessRate)
	assert.NotNil(t, stats.LastSuccess)
	assert.Nil(t, stats.LastFailure)
}

func TestRunJobFailsAfterRetries(t *testing.T) {
	s := NewWithRetry(logger.Nop(), 1, time.Millisecond)
	job := &fakeJob{name: "reload", schedule: "@hourly", failures: 10}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	assert.Equal(t, int32(2), atomic.LoadInt32(&job.calls))

	history, err := s.GetJobHistory("reload")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.False(t, history.Results[0].Success)
	assert.Equal(t, "transient failure", history.Results[0].Error)
}

func TestRunJobAsync(t *testing.T) {
	s := NewWithRetry(logger.Nop(), 0, time.Millisecond)
	job := &fakeJob{name: "reload", schedule: "@hourly"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("reload"))
	assert.Error(t, s.RunJob("missing"))

	assert.Eventually(t, func() bool {
		h, _ := s.GetJobHistory("reload")
		return len(h.Results) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestStopCancelsRetryWait(t *testing.T) {
	s := NewWithRetry(logger.Nop(), 5, time.Hour)
	job := &fakeJob{name: "reload", schedule: "@hourly", failures: 100}
	require.NoError(t, s.AddJob(job))
	s.Start()

	done := make(chan struct{})
	go func() {
		s.runJob(job)
		close(done)
	}()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&job.calls) >= 1 }, time.Second, time.Millisecond)
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop after scheduler stop")
	}
}

func TestJobHistory(t *testing.T) {
	var h JobHistory
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		h.Add(JobResult{Success: i%2 == 0, StartTime: start.Add(time.Duration(i) * time.Minute)})
	}

	assert.Len(t, h.Results, historySize)
	assert.Len(t, h.Latest(5), 5)
	assert.Equal(t, 50, h.Failures())
	assert.Equal(t, 0.5, h.SuccessRate())
	assert.Equal(t, start.Add(119*time.Minute), *h.lastStart(false))
	assert.Equal(t, start.Add(118*time.Minute), *h.lastStart(true))

	var empty JobHistory
	assert.Empty(t, empty.Latest(3))
	assert.Zero(t, empty.SuccessRate())
	assert.Nil(t, empty.lastStart(true))
}

func TestGetJobHistoryUnknown(t *testing.T) {
	_, err := New(logger.Nop()).GetJobHistory("missing")
	assert.Error(t, err)
}
