package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/bullscan/pkg/logger"
)

// Scheduler runs jobs on cron schedules
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	jobs    map[string]Job
	history map[string]*JobHistory
	mu      sync.RWMutex

	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
}

// Options tune retries and the per-run deadline
type Options struct {
	Location   *time.Location // 스케줄 기준 시간대 (nil → Local)
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration // 0 → no deadline
}

// New creates a new scheduler
func New(opts Options, log *logger.Logger) *Scheduler {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		logger:     log.Component("scheduler"),
		jobs:       make(map[string]Job),
		history:    make(map[string]*JobHistory),
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		timeout:    opts.Timeout,
	}
}

// AddJob registers a job on its schedule
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	if _, err := s.cron.AddFunc(job.Schedule(), func() {
		_ = s.runJob(context.Background(), job)
	}); err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = job
	s.history[name] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop waits for running jobs and stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// NextRun returns the next activation time of a job
func (s *Scheduler) NextRun(name string) (time.Time, error) {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return time.Time{}, fmt.Errorf("job %s not found", name)
	}

	sched, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).
		Parse(job.Schedule())
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(time.Now().In(s.cron.Location())), nil
}

// RunNow runs a job immediately and synchronously
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %s not found", name)
	}
	return s.runJob(ctx, job)
}

// runJob executes a job with retry logic and records the outcome
func (s *Scheduler) runJob(ctx context.Context, job Job) error {
	name := job.Name()
	start := time.Now()
	log := s.logger.WithField("job", name)
	log.Info("Job started")

	var lastErr error
	attempts := 0
retry:
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		attempts++
		lastErr = s.attempt(ctx, job)
		if lastErr == nil {
			break
		}

		log.WithFields(map[string]interface{}{
			"attempt": attempt + 1,
			"error":   lastErr.Error(),
		}).Warn("Job execution failed")

		if attempt < s.maxRetries {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				break retry
			case <-time.After(s.retryDelay):
			}
		}
	}

	result := JobResult{
		JobName:   name,
		StartTime: start,
		Duration:  time.Since(start),
		Attempts:  attempts,
		Success:   lastErr == nil,
	}
	if lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	if h, ok := s.history[name]; ok {
		h.Add(result)
	}
	s.mu.Unlock()

	if lastErr != nil {
		log.WithFields(map[string]interface{}{
			"duration": result.Duration.String(),
			"attempts": attempts,
			"error":    lastErr.Error(),
		}).Error("Job failed after all retries")
		return lastErr
	}

	log.WithField("duration", result.Duration.String()).Info("Job completed successfully")
	return nil
}

func (s *Scheduler) attempt(ctx context.Context, job Job) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return job.Run(ctx)
}

// JobStats represents statistics for a job
type JobStats struct {
	JobName     string     `json:"job_name"`
	Schedule    string     `json:"schedule"`
	TotalRuns   int        `json:"total_runs"`
	SuccessRate float64    `json:"success_rate"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// Stats returns per-job statistics sorted by name
func (s *Scheduler) Stats() []JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobStats, 0, len(s.jobs))
	for name, job := range s.jobs {
		h := s.history[name]
		st := JobStats{
			JobName:     name,
			Schedule:    job.Schedule(),
			TotalRuns:   len(h.Results),
			SuccessRate: h.SuccessRate(),
		}
		if last, ok := h.Last(); ok {
			t := last.StartTime
			st.LastRun = &t
			st.LastError = last.Error
		}
		out = append(out, st)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].JobName < out[j].JobName })
	return out
}
