package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name  string
	runs  atomic.Int32
	fails bool
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run() error {
	j.runs.Add(1)
	if j.fails {
		return errors.New("boom")
	}
	return nil
}

func TestScheduler_AddJobAndRunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "cache_cleanup"}

	require.NoError(t, s.AddJob("@every 1h", job))
	assert.Equal(t, []string{"cache_cleanup"}, s.JobNames())

	require.NoError(t, s.RunNow("cache_cleanup"))
	assert.Equal(t, int32(1), job.runs.Load())

	assert.Error(t, s.RunNow("missing"))
}

func TestScheduler_RunNowPropagatesFailure(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "backup", fails: true}
	require.NoError(t, s.AddJob("0 0 3 * * *", job))

	assert.EqualError(t, s.RunNow("backup"), "boom")
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.AddJob("every now and then", &countingJob{name: "x"})
	assert.Error(t, err)
	assert.Empty(t, s.JobNames())
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "tick"}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
