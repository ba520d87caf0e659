package barcache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mhzhou/ashare-screener/pkg/logger"
)

// Cache persists fetched time-series payloads in an embedded SQLite store,
// keyed by logical request description. Entries older than the TTL are
// treated as absent. The store survives process restarts.
type Cache struct {
	db     *sql.DB
	ttl    time.Duration
	logger *logger.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// Open opens (or creates) the cache database and runs migrations.
func Open(path string, ttl time.Duration, log *logger.Logger) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so a reader (cache status command) doesn't block the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &Cache{
		db:     db,
		ttl:    ttl,
		logger: log,
		now:    time.Now,
	}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", path).Info("Bar cache opened")
	return c, nil
}

func (c *Cache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cache_entries (
			key        TEXT PRIMARY KEY,
			fetched_at INTEGER NOT NULL,
			payload    BLOB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cache_fetched ON cache_entries(fetched_at)`,
	}

	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Get loads a cached payload into dest. It reports false when the key is
// absent, the entry is older than the TTL, or the payload fails to decode.
// A corrupt payload is dropped and treated as a miss.
func (c *Cache) Get(key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var fetchedAt int64
	var payload []byte
	err := c.db.QueryRow(
		`SELECT fetched_at, payload FROM cache_entries WHERE key = ?`, key,
	).Scan(&fetchedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read cache entry: %w", err)
	}

	if c.now().Sub(time.Unix(fetchedAt, 0)) >= c.ttl {
		return false, nil
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		c.logger.WithFields(map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		}).Debug("Dropping corrupt cache entry")
		_, _ = c.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key)
		return false, nil
	}

	return true, nil
}

// Put stores a payload under key, overwriting any previous entry. Callers
// treat a Put failure as advisory: log it and continue uncached.
func (c *Cache) Put(key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache payload: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.db.Exec(
		`INSERT INTO cache_entries (key, fetched_at, payload) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			payload = excluded.payload`,
		key, c.now().Unix(), payload,
	)
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Delete removes one entry.
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Purge removes every entry older than the TTL and returns the count.
func (c *Cache) Purge() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-c.ttl).Unix()
	res, err := c.db.Exec(`DELETE FROM cache_entries WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Stats returns entry counts for the cache status command.
func (c *Cache) Stats() (total, fresh int64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err = c.db.QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("count cache entries: %w", err)
	}
	cutoff := c.now().Add(-c.ttl).Unix()
	if err = c.db.QueryRow(`SELECT COUNT(*) FROM cache_entries WHERE fetched_at >= ?`, cutoff).Scan(&fresh); err != nil {
		return 0, 0, fmt.Errorf("count fresh entries: %w", err)
	}
	return total, fresh, nil
}

// SetClock overrides the time source. Tests use it to simulate TTL expiry.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
