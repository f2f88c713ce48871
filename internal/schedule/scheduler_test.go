package schedule

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type blockingJob struct {
	started chan struct{}
	release chan struct{}
	runs    atomic.Int32
}

func (j *blockingJob) Name() string { return "blocking" }

func (j *blockingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	j.started <- struct{}{}
	<-j.release
	return nil
}

func TestCronSchedulerRejectsBadSpec(t *testing.T) {
	s := NewCronScheduler()
	job := &blockingJob{started: make(chan struct{}, 1), release: make(chan struct{})}

	require.Error(t, s.AddJob(job, "not a spec"))
	// seconds field is not part of the 5-field format
	require.Error(t, s.AddJob(job, "* * * * * *"))
	require.NoError(t, s.AddJob(job, "30 3 * * *"))
}

func TestCronSchedulerSkipsOverlappingRun(t *testing.T) {
	s := NewCronScheduler()
	s.Start(context.Background())
	defer s.Stop()

	job := &blockingJob{started: make(chan struct{}, 2), release: make(chan struct{})}
	tick := s.wrap(job)

	done := make(chan struct{})
	go func() {
		tick()
		close(done)
	}()
	<-job.started

	// fires while the first run is still blocked
	tick()
	require.Equal(t, int32(1), job.runs.Load())

	close(job.release)
	<-done

	tick()
	require.Equal(t, int32(2), job.runs.Load())
}
