package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"salonflow/internal/domain"
	"salonflow/internal/metrics"
	"salonflow/internal/models"

	"github.com/rs/zerolog"
)

// Handler executes one job. A returned error triggers the queue's retry
// policy; dead-lettering happens once MaxAttempts is exhausted.
type Handler func(ctx context.Context, job domain.Job) error

// Worker polls the delayed queue and runs due jobs on a bounded pool, so a
// burst of simultaneously-due jobs is smoothed instead of flooding the
// downstream gateway.
type Worker struct {
	queue        *Delayed
	retry        RetryPolicy
	handlers     map[models.JobKind]Handler
	concurrency  int
	pollInterval time.Duration
	batchSize    int
	logger       *zerolog.Logger
}

func NewWorker(queue *Delayed, retry RetryPolicy, concurrency int, logger *zerolog.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = models.WorkerConcurrency
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = models.ReminderRetryDelay
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 10 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &Worker{
		queue:        queue,
		retry:        retry,
		handlers:     make(map[models.JobKind]Handler),
		concurrency:  concurrency,
		pollInterval: time.Second,
		batchSize:    20,
		logger:       logger,
	}
}

// SetPolling overrides the poll interval and batch size. Zero values keep
// the defaults.
func (w *Worker) SetPolling(interval time.Duration, batchSize int) {
	if interval > 0 {
		w.pollInterval = interval
	}
	if batchSize > 0 {
		w.batchSize = batchSize
	}
}

// Register binds a handler to a job kind. Every kind that can appear in the
// queue must be registered before Start.
func (w *Worker) Register(kind models.JobKind, handler Handler) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown job kind: %s", kind)
	}
	if handler == nil {
		return fmt.Errorf("nil handler for job kind %s", kind)
	}
	w.handlers[kind] = handler
	return nil
}

// Start runs the poll loop until ctx is done. Due jobs are fanned out to a
// fixed pool of goroutines.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info().Int("concurrency", w.concurrency).Msg("job worker started")
	defer w.logger.Info().Msg("job worker stopped")

	jobs := make(chan domain.Job)
	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				w.process(ctx, job)
			}
		}()
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case <-ticker.C:
			due, err := w.queue.claimDue(ctx, time.Now(), w.batchSize)
			if err != nil {
				w.logger.Error().Err(err).Msg("failed to poll due jobs")
				continue
			}
			for _, job := range due {
				select {
				case jobs <- job:
				case <-ctx.Done():
					close(jobs)
					wg.Wait()
					return
				}
			}
		}
	}
}

// RunDue processes everything currently due and returns. Used by tests and
// one-shot maintenance commands.
func (w *Worker) RunDue(ctx context.Context) int {
	return w.runDue(ctx, time.Now())
}

func (w *Worker) runDue(ctx context.Context, now time.Time) int {
	due, err := w.queue.claimDue(ctx, now, w.batchSize)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to poll due jobs")
		return 0
	}
	for _, job := range due {
		w.process(ctx, job)
	}
	return len(due)
}

func (w *Worker) process(ctx context.Context, job domain.Job) {
	handler, ok := w.handlers[job.Kind]
	if !ok {
		// A kind with no handler cannot make progress; archive it.
		w.logger.Error().Str("job_id", job.ID).Str("kind", string(job.Kind)).Msg("no handler registered, dead-lettering")
		job.LastError = "no handler registered"
		if err := w.queue.deadLetter(ctx, job); err != nil {
			w.logger.Error().Err(err).Str("job_id", job.ID).Msg("failed to dead-letter job")
		}
		metrics.IncJob(string(job.Kind), "dead")
		return
	}

	job.Attempts++
	err := handler(ctx, job)
	if err == nil {
		if err := w.queue.Remove(ctx, job.ID); err != nil {
			w.logger.Error().Err(err).Str("job_id", job.ID).Msg("failed to clean up finished job")
		}
		metrics.IncJob(string(job.Kind), "ok")
		return
	}

	job.LastError = err.Error()
	if job.Attempts >= job.MaxAttempts {
		w.logger.Error().Err(err).Str("job_id", job.ID).Int("attempts", job.Attempts).Msg("job exhausted retries")
		if dlErr := w.queue.deadLetter(ctx, job); dlErr != nil {
			w.logger.Error().Err(dlErr).Str("job_id", job.ID).Msg("failed to dead-letter job")
		}
		metrics.IncJob(string(job.Kind), "dead")
		return
	}

	metrics.IncJob(string(job.Kind), "retry")
	delay := w.retry.NextDelay(job.Attempts)
	w.logger.Warn().Err(err).Str("job_id", job.ID).Int("attempt", job.Attempts).Dur("retry_in", delay).Msg("job failed, retrying")
	if rErr := w.queue.reschedule(ctx, job, time.Now().Add(delay)); rErr != nil {
		w.logger.Error().Err(rErr).Str("job_id", job.ID).Msg("failed to reschedule job")
	}
}
