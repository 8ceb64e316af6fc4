// internal/waitlist/store.go
package waitlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"mentoloop-waitlist/internal/common/database"
	"mentoloop-waitlist/internal/common/logger"
	"mentoloop-waitlist/internal/common/metrics"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

const emailCacheTTL = 10 * time.Minute

var (
	ErrDuplicateEmail     = errors.New("DUPLICATE_EMAIL")
	ErrStoreNotConfigured = errors.New("STORE_NOT_CONFIGURED")
	ErrInsertFailed       = errors.New("PERSISTENCE_FAILURE")
)

// Store persists signups into the uniqueness-constrained waitlist table.
// Duplicate detection relies on the store-level unique index on
// lower(email), not an application-level pre-check.
type Store struct {
	db     *sql.DB
	cache  *database.RedisClient
	logger logger.Logger
}

// NewStore creates a Store. A degraded (nil-DB) Postgres client is accepted:
// every Submit then fails fast with ErrStoreNotConfigured. cache may be nil.
func NewStore(client *database.PostgresClient, cache *database.RedisClient, log logger.Logger) *Store {
	s := &Store{
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "waitlist-store"}),
	}
	if client != nil {
		s.db = client.DB
	}
	return s
}

// Configured reports whether the store can reach Postgres.
func (s *Store) Configured() bool {
	return s.db != nil
}

// Submit inserts a validated signup. Exactly one row is added on success and
// none on any failure path. A unique-index violation maps to
// ErrDuplicateEmail, which is an expected business outcome.
func (s *Store) Submit(ctx context.Context, req *SignupRequest) (*SignupRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("%w: postgres credentials missing", ErrStoreNotConfigured)
	}

	record := &SignupRecord{
		ID:            uuid.New().String(),
		CreatedAt:     time.Now().UTC(),
		SignupRequest: *req,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO waitlist (id, full_name, email, role, referral_source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		record.ID,
		req.FullName,
		req.Email,
		string(req.Role),
		req.ReferralSource,
		record.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, req.Email)
		}
		return nil, fmt.Errorf("%w: insert failed: %v", ErrInsertFailed, err)
	}

	s.logger.Info("signup persisted", map[string]interface{}{
		"id":    record.ID,
		"email": req.Email,
		"role":  req.Role,
	})

	if s.cache != nil {
		if err := s.cache.Set(ctx, emailCacheKey(req.Email), "1", emailCacheTTL); err != nil {
			s.logger.Warn("email cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return record, nil
}

// EmailExists is a best-effort pre-submission lookup. It returns false
// rather than erroring when the store is unconfigured, and logs and
// suppresses any transient read error.
func (s *Store) EmailExists(ctx context.Context, email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || s.db == nil {
		return false
	}

	if s.cache != nil {
		if val, err := s.cache.Get(ctx, emailCacheKey(email)); err == nil && val == "1" {
			metrics.EmailExistsLookups.WithLabelValues("cache_hit").Inc()
			return true
		}
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM waitlist WHERE lower(email) = $1
		)`, email).Scan(&exists)
	if err != nil {
		s.logger.Warn("email existence check failed", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		metrics.EmailExistsLookups.WithLabelValues("error").Inc()
		return false
	}

	if exists {
		metrics.EmailExistsLookups.WithLabelValues("found").Inc()
		if s.cache != nil {
			if err := s.cache.Set(ctx, emailCacheKey(email), "1", emailCacheTTL); err != nil {
				s.logger.Warn("email cache write failed", map[string]interface{}{"error": err.Error()})
			}
		}
	} else {
		metrics.EmailExistsLookups.WithLabelValues("not_found").Inc()
	}

	return exists
}

func emailCacheKey(email string) string {
	return "waitlist:email:" + email
}
