// Package queue is a Redis-backed delayed job queue. Scheduling lives in a
// sorted set keyed by fire time; job state lives in one hash per job id.
// Enqueue has upsert semantics, so a deterministic job id makes re-scheduling
// safe against duplicate timers.
package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"salonflow/internal/domain"
	"salonflow/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	scheduleKey   = "jobs:schedule"
	dataKeyPrefix = "jobs:data:"
	deadLetterKey = "jobs:deadletter"
)

// Delayed implements domain.JobQueue over Redis.
type Delayed struct {
	client *redis.Client
}

func NewDelayed(client *redis.Client) *Delayed {
	return &Delayed{client: client}
}

func dataKey(id string) string {
	return dataKeyPrefix + id
}

// Enqueue schedules the job, replacing any existing schedule for the same id.
func (q *Delayed) Enqueue(ctx context.Context, job domain.Job) error {
	if q.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if job.ID == "" {
		return fmt.Errorf("job id is required")
	}
	if !job.Kind.Valid() {
		return fmt.Errorf("unknown job kind: %s", job.Kind)
	}
	if job.MaxAttempts <= 0 {
		job.MaxAttempts = 1
	}

	pipe := q.client.TxPipeline()
	pipe.HSet(ctx, dataKey(job.ID), map[string]interface{}{
		"kind":         string(job.Kind),
		"payload":      job.Payload,
		"attempts":     job.Attempts,
		"max_attempts": job.MaxAttempts,
		"last_error":   job.LastError,
	})
	pipe.ZAdd(ctx, scheduleKey, redis.Z{Score: float64(job.RunAt.UnixMilli()), Member: job.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", job.ID, err)
	}
	return nil
}

// Remove drops the job from the schedule and deletes its state. Removing an
// unknown id is not an error.
func (q *Delayed) Remove(ctx context.Context, id string) error {
	if q.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	pipe := q.client.TxPipeline()
	pipe.ZRem(ctx, scheduleKey, id)
	pipe.Del(ctx, dataKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove job %s: %w", id, err)
	}
	return nil
}

// Lookup returns the job by id, or nil when it is not scheduled.
func (q *Delayed) Lookup(ctx context.Context, id string) (*domain.Job, error) {
	if q.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	score, err := q.client.ZScore(ctx, scheduleKey, id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up job %s: %w", id, err)
	}

	fields, err := q.client.HGetAll(ctx, dataKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read job %s: %w", id, err)
	}

	job := jobFromFields(id, fields)
	job.RunAt = time.UnixMilli(int64(score))
	return &job, nil
}

// claimDue pops up to limit jobs whose fire time has passed. A job is
// claimed by the ZREM winner, so concurrent pollers never double-claim.
func (q *Delayed) claimDue(ctx context.Context, now time.Time, limit int) ([]domain.Job, error) {
	ids, err := q.client.ZRangeByScore(ctx, scheduleKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to poll due jobs: %w", err)
	}

	var jobs []domain.Job
	for _, id := range ids {
		removed, err := q.client.ZRem(ctx, scheduleKey, id).Result()
		if err != nil || removed == 0 {
			continue
		}
		fields, err := q.client.HGetAll(ctx, dataKey(id)).Result()
		if err != nil {
			continue
		}
		job := jobFromFields(id, fields)
		job.RunAt = now
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// reschedule puts a failed job back with updated attempt state.
func (q *Delayed) reschedule(ctx context.Context, job domain.Job, runAt time.Time) error {
	job.RunAt = runAt
	return q.Enqueue(ctx, job)
}

// deadLetter archives an exhausted job and drops its state.
func (q *Delayed) deadLetter(ctx context.Context, job domain.Job) error {
	entry := fmt.Sprintf("%s|%s|%d|%s", job.ID, job.Kind, job.Attempts, job.LastError)
	pipe := q.client.TxPipeline()
	pipe.LPush(ctx, deadLetterKey, entry)
	pipe.Del(ctx, dataKey(job.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to dead-letter job %s: %w", job.ID, err)
	}
	return nil
}

func jobFromFields(id string, fields map[string]string) domain.Job {
	attempts, _ := strconv.Atoi(fields["attempts"])
	maxAttempts, _ := strconv.Atoi(fields["max_attempts"])
	return domain.Job{
		ID:          id,
		Kind:        models.JobKind(fields["kind"]),
		Payload:     []byte(fields["payload"]),
		Attempts:    attempts,
		MaxAttempts: maxAttempts,
		LastError:   fields["last_error"],
	}
}
