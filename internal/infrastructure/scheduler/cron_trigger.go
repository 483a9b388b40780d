package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/condo/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// ScheduledActor is recorded as the creator of entries issued by the trigger
const ScheduledActor = "scheduler"

// CronTriggerConfig holds configuration for the monthly trigger
type CronTriggerConfig struct {
	// GenerationDay and GenerationHour (UTC) mark when a month's run becomes due
	GenerationDay  int
	GenerationHour int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		GenerationDay:  1,
		GenerationHour: 0,
		CheckInterval:  time.Hour,
	}
}

// Validate checks the trigger configuration
func (c CronTriggerConfig) Validate() error {
	if c.GenerationDay < 1 || c.GenerationDay > 28 {
		return fmt.Errorf("%w: generation day must be between 1 and 28", ErrInvalidConfig)
	}
	if c.GenerationHour < 0 || c.GenerationHour > 23 {
		return fmt.Errorf("%w: generation hour must be between 0 and 23", ErrInvalidConfig)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("%w: check interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// GenerationScheduler queues generation for a period
type GenerationScheduler interface {
	ScheduleGeneration(period valueobject.YearMonth, actor string) error
}

// CronTrigger fires the monthly generation once the configured day and hour
// have passed. The period is derived from the trigger's clock here and passed
// on explicitly; nothing downstream reads the wall clock.
type CronTrigger struct {
	config    CronTriggerConfig
	scheduler GenerationScheduler
	now       func() time.Time
	logger    *zap.Logger

	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	isRunning  bool
	lastPeriod string
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(
	config CronTriggerConfig,
	scheduler GenerationScheduler,
	now func() time.Time,
	logger *zap.Logger,
) *CronTrigger {
	if now == nil {
		now = time.Now
	}
	return &CronTrigger{
		config:    config,
		scheduler: scheduler,
		now:       now,
		logger:    logger,
	}
}

// Start starts the check loop
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Cron trigger started",
		zap.Int("generation_day", c.config.GenerationDay),
		zap.Int("generation_hour", c.config.GenerationHour),
		zap.Duration("check_interval", c.config.CheckInterval),
	)
	return nil
}

// Stop stops the check loop
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	// a restart after the due time catches up immediately
	c.CheckAndTrigger()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CheckAndTrigger()
		}
	}
}

// CheckAndTrigger schedules the current month once it is due.
// It returns true when a run was scheduled.
func (c *CronTrigger) CheckAndTrigger() bool {
	now := c.now().UTC()
	if !c.isDue(now) {
		return false
	}
	period := valueobject.YearMonthOf(now)

	c.mu.Lock()
	if c.lastPeriod == period.String() {
		c.mu.Unlock()
		return false
	}
	c.lastPeriod = period.String()
	c.mu.Unlock()

	c.logger.Info("Triggering monthly generation", zap.String("period", period.String()))
	if err := c.scheduler.ScheduleGeneration(period, ScheduledActor); err != nil {
		c.logger.Error("Failed to schedule generation", zap.String("period", period.String()), zap.Error(err))
		c.mu.Lock()
		c.lastPeriod = ""
		c.mu.Unlock()
		return false
	}
	return true
}

func (c *CronTrigger) isDue(now time.Time) bool {
	if now.Day() != c.config.GenerationDay {
		return now.Day() > c.config.GenerationDay
	}
	return now.Hour() >= c.config.GenerationHour
}
