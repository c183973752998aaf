package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-sync/internal/platform/logging"
	"github.com/robfig/cron/v3"
)

// Job is one recurring sync task.
type Job struct {
	Name     string
	Schedule string
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs registered jobs on their cron schedules. A job never
// overlaps with its own previous run.
type Scheduler struct {
	cron   *cron.Cron
	logger *logging.Logger
	jobs   []string
}

func New(logger *logging.Logger, opts ...cron.Option) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("scheduler")
	adapter := cronLogger{logger: logger}

	base := []cron.Option{
		cron.WithLogger(adapter),
		cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
	}
	return &Scheduler{
		cron:   cron.New(append(base, opts...)...),
		logger: logger,
	}
}

// Register adds job under ctx. Jobs with an empty schedule are skipped.
func (s *Scheduler) Register(ctx context.Context, job Job) error {
	if strings.TrimSpace(job.Schedule) == "" {
		s.logger.Info("job disabled", "job", job.Name)
		return nil
	}
	if job.Run == nil {
		return fmt.Errorf("job %s has no run func", job.Name)
	}

	_, err := s.cron.AddFunc(job.Schedule, func() {
		s.run(ctx, job)
	})
	if err != nil {
		return fmt.Errorf("schedule job %s %q: %w", job.Name, job.Schedule, err)
	}

	s.jobs = append(s.jobs, job.Name)
	s.logger.Info("job scheduled", "job", job.Name, "schedule", job.Schedule)
	return nil
}

// Jobs lists the registered job names.
func (s *Scheduler) Jobs() []string {
	return append([]string(nil), s.jobs...)
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.jobs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.jobs))

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()

	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) run(ctx context.Context, job Job) {
	if ctx.Err() != nil {
		return
	}
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.logger.ErrorContext(ctx, "job failed", "job", job.Name, "duration", time.Since(start), "error", err)
		return
	}
	s.logger.InfoContext(ctx, "job finished", "job", job.Name, "duration", time.Since(start))
}

// cronLogger adapts the structured logger to cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
