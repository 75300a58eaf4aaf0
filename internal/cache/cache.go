// Package cache provides key/value storage with expiry on top of the cache database.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache stores msgpack-encoded values with an expiration timestamp.
type Cache struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

// New creates a cache over a database migrated with the cache schema.
func New(db *sql.DB, log zerolog.Logger) *Cache {
	return &Cache{
		db:  db,
		log: log.With().Str("component", "cache").Logger(),
		now: time.Now,
	}
}

// Set stores value under key until ttl elapses.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value for %s: %w", key, err)
	}

	expiresAt := c.now().Add(ttl).Unix()
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO cache (key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at
	`, key, data, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store cache entry %s: %w", key, err)
	}
	return nil
}

// Get decodes the value under key into dest. Absent or expired keys return ErrMiss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	var data []byte
	var expiresAt int64
	err := c.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM cache WHERE key = ?", key,
	).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}

	if c.now().Unix() >= expiresAt {
		return ErrMiss
	}

	if err := msgpack.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	return nil
}

// Delete removes a cache entry.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM cache WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete cache entry %s: %w", key, err)
	}
	return nil
}

// DeleteByPrefix removes all entries whose key starts with prefix.
func (c *Cache) DeleteByPrefix(ctx context.Context, prefix string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM cache WHERE substr(key, 1, ?) = ?", len(prefix), prefix); err != nil {
		return fmt.Errorf("failed to delete cache entries with prefix %s: %w", prefix, err)
	}
	return nil
}

// DeleteExpired removes expired entries and returns how many were removed.
func (c *Cache) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM cache WHERE expires_at <= ?", c.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	return removedCount(res)
}

func removedCount(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count expired cache entries: %w", err)
	}
	return n, nil
}

// CleanupJob removes expired cache entries on a schedule.
type CleanupJob struct {
	cache *Cache
}

// NewCleanupJob creates the cache cleanup job.
func NewCleanupJob(cache *Cache) *CleanupJob {
	return &CleanupJob{cache: cache}
}

// Name returns the job name
func (j *CleanupJob) Name() string {
	return "cache_cleanup"
}

// Run executes the cleanup
func (j *CleanupJob) Run() error {
	n, err := j.cache.DeleteExpired(context.Background())
	if err != nil {
		return err
	}
	if n > 0 {
		j.cache.log.Info().Int64("removed", n).Msg("Expired cache entries removed")
	}
	return nil
}
