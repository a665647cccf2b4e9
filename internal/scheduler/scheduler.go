package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hamed0406/netumo/internal/domain"
)

// certificate and registration data move slowly, so those checks run on
// fixed daily schedules; the whois pass is offset an hour to spread load
const (
	sslCronSpec    = "0 0 * * *"
	domainCronSpec = "0 1 * * *"
)

// Runner executes one check job.
type Runner interface {
	Run(ctx context.Context, job domain.CheckJob) error
}

// Options tune the worker pool and retry policy.
type Options struct {
	Concurrency  int
	QueueSize    int
	MaxAttempts  int
	RetryBackoff time.Duration
}

// Scheduler owns the recurring-check registry and the worker pool that
// drains it. Registrations are keyed by CheckJob.Key, so re-registering a
// pair replaces the previous entry instead of duplicating it. Cron callbacks
// only enqueue; all probing happens on the workers.
type Scheduler struct {
	log    *zap.Logger
	cron   *cron.Cron
	runner Runner
	opts   Options

	queue chan domain.CheckJob

	mu       sync.Mutex
	entries  map[string]cron.EntryID
	inFlight map[string]bool

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func New(log *zap.Logger, runner Runner, opts Options) *Scheduler {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 5
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = time.Minute
	}
	return &Scheduler{
		log:      log,
		cron:     cron.New(),
		runner:   runner,
		opts:     opts,
		queue:    make(chan domain.CheckJob, opts.QueueSize),
		entries:  make(map[string]cron.EntryID),
		inFlight: make(map[string]bool),
	}
}

// Start launches the worker pool and the cron loop.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	for i := 0; i < s.opts.Concurrency; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}
	s.cron.Start()
	s.log.Info("scheduler_started", zap.Int("concurrency", s.opts.Concurrency))
}

// Stop halts cron, cancels the workers and waits for in-flight jobs.
func (s *Scheduler) Stop() {
	cronCtx := s.cron.Stop()
	<-cronCtx.Done()
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.log.Info("scheduler_stopped")
}

// ScheduleTarget registers the recurring http, ssl and domain checks for a
// target. Safe to call again after an interval change.
func (s *Scheduler) ScheduleTarget(t *domain.Target) {
	s.ScheduleHTTP(t.ID, t.CheckIntervalMinutes)
	s.ScheduleKind(t, domain.KindSSL)
	s.ScheduleKind(t, domain.KindDomain)
}

// ScheduleHTTP registers the recurring availability check at the target's
// interval, replacing any previous registration.
func (s *Scheduler) ScheduleHTTP(id domain.TargetID, intervalMinutes int) {
	if intervalMinutes <= 0 {
		intervalMinutes = 5
	}
	job := domain.CheckJob{TargetID: id, Kind: domain.KindHTTP}
	every := cron.Every(time.Duration(intervalMinutes) * time.Minute)
	s.register(job, s.cron.Schedule(every, cron.FuncJob(func() { s.Enqueue(job) })))
	s.log.Info("check_scheduled",
		zap.String("key", job.Key()),
		zap.Int("interval_minutes", intervalMinutes),
	)
}

// ScheduleKind registers the daily ssl or domain check for a target.
// Certificates only exist on https targets, so registering the ssl kind for
// a plain-http target is a no-op.
func (s *Scheduler) ScheduleKind(t *domain.Target, kind domain.CheckKind) {
	var spec string
	switch kind {
	case domain.KindSSL:
		if !t.IsHTTPS() {
			return
		}
		spec = sslCronSpec
	case domain.KindDomain:
		spec = domainCronSpec
	default:
		return
	}
	job := domain.CheckJob{TargetID: t.ID, Kind: kind}
	entryID, err := s.cron.AddFunc(spec, func() { s.Enqueue(job) })
	if err != nil {
		s.log.Error("cron_add_failed", zap.String("key", job.Key()), zap.Error(err))
		return
	}
	s.register(job, entryID)
	s.log.Info("check_scheduled", zap.String("key", job.Key()), zap.String("spec", spec))
}

func (s *Scheduler) register(job domain.CheckJob, entryID cron.EntryID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.entries[job.Key()]; ok {
		s.cron.Remove(old)
	}
	s.entries[job.Key()] = entryID
}

// CancelTarget removes all recurring checks for a target.
func (s *Scheduler) CancelTarget(id domain.TargetID) {
	for _, kind := range []domain.CheckKind{domain.KindHTTP, domain.KindSSL, domain.KindDomain} {
		s.Cancel(domain.CheckJob{TargetID: id, Kind: kind})
	}
}

// Cancel removes one recurring check. Unknown keys are ignored.
func (s *Scheduler) Cancel(job domain.CheckJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.entries[job.Key()]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, job.Key())
		s.log.Info("check_cancelled", zap.String("key", job.Key()))
	}
}

// Scheduled reports whether a recurring registration exists for the key.
func (s *Scheduler) Scheduled(job domain.CheckJob) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[job.Key()]
	return ok
}

// Enqueue hands a job to the worker pool without blocking. A full queue
// drops the job; the recurring registration will fire again.
func (s *Scheduler) Enqueue(job domain.CheckJob) {
	select {
	case s.queue <- job:
	default:
		s.log.Warn("queue_full_job_dropped", zap.String("key", job.Key()))
	}
}

func (s *Scheduler) worker(ctx context.Context, n int) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.queue:
			if !s.claim(job) {
				s.log.Debug("job_already_in_flight", zap.String("key", job.Key()))
				continue
			}
			s.execute(ctx, job)
			s.release(job)
		}
	}
}

func (s *Scheduler) claim(job domain.CheckJob) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[job.Key()] {
		return false
	}
	s.inFlight[job.Key()] = true
	return true
}

func (s *Scheduler) release(job domain.CheckJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, job.Key())
}

// execute runs the job with exponential-backoff retries. Abandonment after
// the final attempt is logged; the recurring registration stays intact.
func (s *Scheduler) execute(ctx context.Context, job domain.CheckJob) {
	backoff := s.opts.RetryBackoff
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		err := s.runner.Run(ctx, job)
		if err == nil {
			return
		}
		s.log.Warn("check_attempt_failed",
			zap.String("key", job.Key()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == s.opts.MaxAttempts {
			s.log.Error("check_abandoned",
				zap.String("key", job.Key()),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}
