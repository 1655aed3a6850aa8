package session

import (
	"context"
	"sync/atomic"
	"time"

	"salonflow/internal/domain"

	"github.com/rs/zerolog"
)

// recoveryProbeInterval задержка перед повторной проверкой основного хранилища
const recoveryProbeInterval = time.Minute

// FailoverRepository serves from the primary repository and falls back to a
// secondary one after a primary failure. It probes the primary again after
// recoveryProbeInterval.
type FailoverRepository struct {
	primary   domain.SessionRepository
	fallback  domain.SessionRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nano
}

func NewFailoverRepository(primary, fallback domain.SessionRepository, logger *zerolog.Logger) *FailoverRepository {
	return &FailoverRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary session repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

// usePrimary reports whether the next call should go to the primary, flipping
// back into probe mode once the recovery interval has elapsed.
func (r *FailoverRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	if time.Since(time.Unix(0, r.lastCheck.Load())) > recoveryProbeInterval {
		r.lastCheck.Store(time.Now().UnixNano())
		return true
	}
	return false
}

func (r *FailoverRepository) recover() {
	if r.isDown.Load() {
		r.isDown.Store(false)
		r.logger.Info().Msg("Primary session repository recovered")
	}
}

func (r *FailoverRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if r.usePrimary() {
		if err := r.primary.Set(ctx, key, value, ttl); err == nil {
			r.recover()
			return nil
		} else {
			r.markDown(err)
		}
	}
	return r.fallback.Set(ctx, key, value, ttl)
}

func (r *FailoverRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if r.usePrimary() {
		value, err := r.primary.Get(ctx, key)
		if err == nil {
			r.recover()
			return value, nil
		}
		r.markDown(err)
	}
	return r.fallback.Get(ctx, key)
}

func (r *FailoverRepository) Delete(ctx context.Context, key string) error {
	if r.usePrimary() {
		if err := r.primary.Delete(ctx, key); err == nil {
			r.recover()
			return nil
		} else {
			r.markDown(err)
		}
	}
	return r.fallback.Delete(ctx, key)
}

func (r *FailoverRepository) Refresh(ctx context.Context, key string, ttl time.Duration) error {
	if r.usePrimary() {
		if err := r.primary.Refresh(ctx, key, ttl); err == nil {
			r.recover()
			return nil
		} else {
			r.markDown(err)
		}
	}
	return r.fallback.Refresh(ctx, key, ttl)
}

func (r *FailoverRepository) Keys(ctx context.Context, pattern string) ([]string, error) {
	if r.usePrimary() {
		keys, err := r.primary.Keys(ctx, pattern)
		if err == nil {
			r.recover()
			return keys, nil
		}
		r.markDown(err)
	}
	return r.fallback.Keys(ctx, pattern)
}

func (r *FailoverRepository) TTL(ctx context.Context, key string) (time.Duration, error) {
	if r.usePrimary() {
		ttl, err := r.primary.TTL(ctx, key)
		if err == nil {
			r.recover()
			return ttl, nil
		}
		r.markDown(err)
	}
	return r.fallback.TTL(ctx, key)
}
