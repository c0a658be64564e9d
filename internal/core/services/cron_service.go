package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"membertracker/internal/config"
	"membertracker/internal/core/domain"
	"membertracker/internal/pkg/logger"
	"membertracker/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job names accepted by RunNow
const (
	JobMissedCounters   = "missed-counters"
	JobDeactivation     = "deactivation"
	JobPaymentReminders = "payment-reminders"
	JobTokenCleanup     = "token-cleanup"
)

var ErrUnknownJob = errors.New("unknown job")

// jobTimeout bounds a single scheduled run
const jobTimeout = 30 * time.Minute

// CounterJobs is the payment side of the scheduled work
type CounterJobs interface {
	UpdateMissingPaymentCounters(ctx context.Context) (*CounterUpdateResult, error)
	DeactivateLapsedMembers(ctx context.Context) (*DeactivationResult, error)
}

// ReminderJobs sends the daily payment reminder
type ReminderJobs interface {
	SendPaymentReminders(ctx context.Context, threshold int) (*domain.Communication, error)
}

// TokenJobs purges expired refresh tokens
type TokenJobs interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

type job struct {
	spec string
	run  func(ctx context.Context) (interface{}, error)
}

// CronService runs the daily background jobs
type CronService struct {
	cron *cron.Cron
	cfg  config.SchedulerConfig
	jobs map[string]job
}

// NewCronService creates a new cron service
func NewCronService(counters CounterJobs, reminders ReminderJobs, tokens TokenJobs, cfg config.SchedulerConfig) *CronService {
	cronLog := cron.PrintfLogger(logger.Printf{})
	s := &CronService{
		cron: cron.New(cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog))),
		cfg:  cfg,
	}

	s.jobs = map[string]job{
		JobMissedCounters: {cfg.CounterSpec, func(ctx context.Context) (interface{}, error) {
			return counters.UpdateMissingPaymentCounters(ctx)
		}},
		JobDeactivation: {cfg.DeactivationSpec, func(ctx context.Context) (interface{}, error) {
			return counters.DeactivateLapsedMembers(ctx)
		}},
		JobPaymentReminders: {cfg.ReminderSpec, func(ctx context.Context) (interface{}, error) {
			comm, err := reminders.SendPaymentReminders(ctx, cfg.ReminderThreshold)
			if comm == nil {
				return nil, err
			}
			return comm.DeliveryCounts(), err
		}},
		JobTokenCleanup: {cfg.TokenCleanupSpec, func(ctx context.Context) (interface{}, error) {
			return tokens.CleanupExpiredTokens(ctx)
		}},
	}
	return s
}

// Start registers every job and starts the scheduler
func (s *CronService) Start() error {
	if !s.cfg.Enabled {
		log.Warn().Msg("⚠️ Scheduler disabled")
		return nil
	}

	for _, name := range s.JobNames() {
		j := s.jobs[name]
		if j.spec == "" {
			continue
		}
		if _, err := s.cron.AddFunc(j.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			_, _ = s.RunNow(ctx, name)
		}); err != nil {
			return err
		}
		log.Info().Str("job", name).Str("spec", j.spec).Msg("⏰ Job scheduled")
	}

	s.cron.Start()
	log.Info().Msg("🚀 Scheduler started")
	return nil
}

// Stop waits for running jobs to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("🛑 Scheduler stopped")
}

// RunNow runs the named job immediately and returns its result
func (s *CronService) RunNow(ctx context.Context, name string) (interface{}, error) {
	j, ok := s.jobs[name]
	if !ok {
		return nil, ErrUnknownJob
	}

	start := time.Now()
	log.Info().Str("job", name).Msg("▶️ Job started")

	result, err := j.run(ctx)
	metrics.SchedulerRuns.WithLabelValues(name, metrics.Result(err)).Inc()
	if err != nil {
		log.Error().Err(err).Str("job", name).Msg("❌ Job failed")
		return nil, err
	}

	log.Info().Str("job", name).Dur("took", time.Since(start)).Msg("✅ Job finished")
	return result, nil
}

// JobNames lists the known jobs in name order
func (s *CronService) JobNames() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
