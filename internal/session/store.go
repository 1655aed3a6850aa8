// Package session keeps one in-progress booking conversation per customer,
// keyed by normalized phone number, with a sliding 30-minute TTL.
package session

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"salonflow/internal/domain"
	"salonflow/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const keyPrefix = "session:"

// Patch carries partial fields for Update. Nil fields are left untouched;
// a non-nil Choice is appended to the context's choice history.
type Patch struct {
	Language       *models.Language
	OriginalIntent *models.BookingIntent
	Choice         *models.ContextChoice
	CustomerID     *int64
	SalonID        *int64
}

// ActiveSession pairs a phone key with its live context.
type ActiveSession struct {
	Phone   string
	Context *models.BookingContext
}

// Stats summarizes the live session population.
type Stats struct {
	Count   int
	MeanTTL time.Duration
}

// Store is the session context store. A failed write degrades the
// conversation (the customer is asked to repeat) but never propagates into
// the message-handling path, so Save, Update and Delete do not return errors.
type Store struct {
	repo   domain.SessionRepository
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewStore(repo domain.SessionRepository, ttl time.Duration, logger *zerolog.Logger) *Store {
	if ttl <= 0 {
		ttl = models.SessionTTL
	}
	return &Store{repo: repo, ttl: ttl, logger: logger}
}

// NormalizePhone strips everything except digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func sessionKey(phone string) string {
	return keyPrefix + NormalizePhone(phone)
}

// Save persists the context under the phone key with a fresh TTL.
func (s *Store) Save(ctx context.Context, phone string, bc *models.BookingContext) {
	if bc == nil {
		return
	}
	data, err := json.Marshal(bc)
	if err != nil {
		s.logger.Error().Err(err).Str("phone", NormalizePhone(phone)).Msg("failed to marshal session context")
		return
	}
	if err := s.repo.Set(ctx, sessionKey(phone), data, s.ttl); err != nil {
		s.logger.Error().Err(err).Str("phone", NormalizePhone(phone)).Msg("failed to save session context")
	}
}

// Get returns the live context for the phone, or nil when absent or corrupt.
// A successful read refreshes the TTL (sliding expiration).
func (s *Store) Get(ctx context.Context, phone string) *models.BookingContext {
	key := sessionKey(phone)
	data, err := s.repo.Get(ctx, key)
	if err != nil {
		s.logger.Error().Err(err).Str("phone", NormalizePhone(phone)).Msg("failed to read session context")
		return nil
	}
	if data == nil {
		return nil
	}

	var bc models.BookingContext
	if err := json.Unmarshal(data, &bc); err != nil {
		s.logger.Warn().Err(err).Str("phone", NormalizePhone(phone)).Msg("discarding unparseable session payload")
		return nil
	}
	if !bc.Complete() {
		s.logger.Warn().Str("phone", NormalizePhone(phone)).Msg("discarding corrupt session context")
		return nil
	}

	if err := s.repo.Refresh(ctx, key, s.ttl); err != nil {
		s.logger.Error().Err(err).Str("phone", NormalizePhone(phone)).Msg("failed to refresh session ttl")
	}
	return &bc
}

// Update merges patch fields into an existing context and re-persists it
// with a fresh TTL. When no context exists this is a guarded no-op: stray
// messages must not synthesize partial sessions.
func (s *Store) Update(ctx context.Context, phone string, patch Patch) {
	bc := s.Get(ctx, phone)
	if bc == nil {
		return
	}

	if patch.Language != nil {
		bc.Language = *patch.Language
	}
	if patch.OriginalIntent != nil {
		bc.OriginalIntent = *patch.OriginalIntent
	}
	if patch.Choice != nil {
		bc.Choices = append(bc.Choices, *patch.Choice)
	}
	if patch.CustomerID != nil {
		bc.CustomerID = *patch.CustomerID
	}
	if patch.SalonID != nil {
		bc.SalonID = *patch.SalonID
	}
	bc.LastInteractionAt = time.Now()

	s.Save(ctx, phone, bc)
}

// Delete removes the context. Best-effort cleanup: failure is logged only.
func (s *Store) Delete(ctx context.Context, phone string) {
	if err := s.repo.Delete(ctx, sessionKey(phone)); err != nil {
		s.logger.Error().Err(err).Str("phone", NormalizePhone(phone)).Msg("failed to delete session context")
	}
}

// GenerateSessionID returns a collision-resistant opaque id with a time
// component and a random suffix. Used for the SessionID field only, not as
// the storage key.
func GenerateSessionID() string {
	return "sess_" + strconv.FormatInt(time.Now().UnixNano(), 36) + "_" + uuid.NewString()[:8]
}

// ListActive returns every live session. Degrades to an empty list on
// store errors.
func (s *Store) ListActive(ctx context.Context) []ActiveSession {
	keys, err := s.repo.Keys(ctx, keyPrefix+"*")
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list session keys")
		return nil
	}

	var active []ActiveSession
	for _, key := range keys {
		phone := strings.TrimPrefix(key, keyPrefix)
		if bc := s.Get(ctx, phone); bc != nil {
			active = append(active, ActiveSession{Phone: phone, Context: bc})
		}
	}
	return active
}

// ClearExpired removes entries whose TTL has lapsed. Redis expires keys on
// its own; this is a defensive sweep for repositories that do not. Returns
// the number of removed entries.
func (s *Store) ClearExpired(ctx context.Context) int {
	keys, err := s.repo.Keys(ctx, keyPrefix+"*")
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list session keys for cleanup")
		return 0
	}

	removed := 0
	for _, key := range keys {
		ttl, err := s.repo.TTL(ctx, key)
		if err != nil {
			continue
		}
		if ttl <= 0 {
			if err := s.repo.Delete(ctx, key); err == nil {
				removed++
			}
		}
	}
	return removed
}

// GetStatistics returns the live session count and mean remaining TTL.
// Degrades to zeros on store errors.
func (s *Store) GetStatistics(ctx context.Context) Stats {
	keys, err := s.repo.Keys(ctx, keyPrefix+"*")
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to collect session statistics")
		return Stats{}
	}

	var total time.Duration
	counted := 0
	for _, key := range keys {
		ttl, err := s.repo.TTL(ctx, key)
		if err != nil || ttl <= 0 {
			continue
		}
		total += ttl
		counted++
	}

	stats := Stats{Count: counted}
	if counted > 0 {
		stats.MeanTTL = total / time.Duration(counted)
	}
	return stats
}
