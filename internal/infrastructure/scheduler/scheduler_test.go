package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingExecutor struct {
	mu       sync.Mutex
	executed []*Job
	failures map[billing.Cohort]int
	done     chan struct{}
}

func newRecordingExecutor(expected int) *recordingExecutor {
	return &recordingExecutor{
		failures: make(map[billing.Cohort]int),
		done:     make(chan struct{}, expected),
	}
}

func (e *recordingExecutor) Execute(_ context.Context, job *Job) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failures[job.Cohort] > 0 {
		e.failures[job.Cohort]--
		return errors.New("database unavailable")
	}
	e.executed = append(e.executed, job)
	e.done <- struct{}{}
	return nil
}

func (e *recordingExecutor) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-e.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for job %d of %d", i+1, n)
		}
	}
}

func testConfig() SchedulerConfig {
	cfg := DefaultSchedulerConfig()
	cfg.RetryDelay = 10 * time.Millisecond
	cfg.JobTimeout = time.Second
	return cfg
}

func TestScheduler_ScheduleGenerationRunsEveryCohort(t *testing.T) {
	exec := newRecordingExecutor(2)
	s := NewScheduler(testConfig(), exec, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	period := valueobject.MustYearMonth(2025, 1)
	require.NoError(t, s.ScheduleGeneration(period, ""))
	exec.wait(t, 2)

	exec.mu.Lock()
	defer exec.mu.Unlock()
	cohorts := []billing.Cohort{}
	for _, job := range exec.executed {
		cohorts = append(cohorts, job.Cohort)
		assert.Equal(t, "2025-01", job.Period.String())
		assert.Equal(t, billing.SystemActor, job.Actor)
	}
	assert.ElementsMatch(t, billing.AllCohorts(), cohorts)
}

func TestScheduler_RetriesFailedJobs(t *testing.T) {
	exec := newRecordingExecutor(1)
	exec.failures[billing.CohortFees] = 2

	cfg := testConfig()
	cfg.Cohorts = []billing.Cohort{billing.CohortFees}
	s := NewScheduler(cfg, exec, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	require.NoError(t, s.ScheduleGeneration(valueobject.MustYearMonth(2025, 2), "scheduler"))
	exec.wait(t, 1)

	exec.mu.Lock()
	defer exec.mu.Unlock()
	require.Len(t, exec.executed, 1)
	assert.Equal(t, 2, exec.executed[0].RetryCount)
}

func TestScheduler_SubmitWhenStopped(t *testing.T) {
	s := NewScheduler(testConfig(), newRecordingExecutor(0), zap.NewNop())
	err := s.SubmitJob(NewJob(billing.CohortFees, valueobject.MustYearMonth(2025, 1), "", 0))
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	err = s.ScheduleGeneration(valueobject.MustYearMonth(2025, 1), "")
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestSchedulerConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultSchedulerConfig().Validate())

	cfg := DefaultSchedulerConfig()
	cfg.MaxConcurrentJobs = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultSchedulerConfig()
	cfg.Cohorts = []billing.Cohort{"UTILITY"}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestJob_Lifecycle(t *testing.T) {
	job := NewJob(billing.CohortVehicleMonthly, valueobject.MustYearMonth(2024, 12), "admin", 1)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Start()
	require.NotNil(t, job.StartedAt)
	job.Fail("boom")
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry(time.Minute)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Empty(t, job.Error)
	require.NotNil(t, job.NextRetryAt)

	job.Start()
	job.Fail("boom again")
	assert.False(t, job.ShouldRetry())

	job.Start()
	job.Complete()
	assert.Equal(t, JobStatusSuccess, job.Status)
}
