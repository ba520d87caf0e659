package barcache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhzhou/ashare-screener/pkg/logger"
)

func openTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path, ttl, logger.NewNop())
	require.NoError(t, err, "cache open failed")
	t.Cleanup(func() { c.Close() })
	return c
}

type payload struct {
	Code  string  `json:"code"`
	Close float64 `json:"close"`
}

func TestCache_RoundTrip(t *testing.T) {
	c := openTestCache(t, 24*time.Hour)

	in := []payload{
		{Code: "600000.SH", Close: 8.12},
		{Code: "000001.SZ", Close: 11.45},
	}
	require.NoError(t, c.Put("daily:600000.SH:20260810:20260901", in))

	var out []payload
	found, err := c.Get("daily:600000.SH:20260810:20260901", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestCache_MissOnAbsentKey(t *testing.T) {
	c := openTestCache(t, 24*time.Hour)

	var out []payload
	found, err := c.Get("daily:999999.SH:20260810:20260901", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_TTLExpiry(t *testing.T) {
	c := openTestCache(t, 24*time.Hour)

	base := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return base })
	require.NoError(t, c.Put("qualified_universe", payload{Code: "600000.SH", Close: 8.12}))

	// Still fresh just under the TTL.
	c.SetClock(func() time.Time { return base.Add(23 * time.Hour) })
	var out payload
	found, err := c.Get("qualified_universe", &out)
	require.NoError(t, err)
	assert.True(t, found)

	// Expired entries are treated as absent, never served.
	c.SetClock(func() time.Time { return base.Add(24*time.Hour + time.Second) })
	found, err = c.Get("qualified_universe", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_PutOverwrites(t *testing.T) {
	c := openTestCache(t, 24*time.Hour)

	require.NoError(t, c.Put("k", payload{Code: "a", Close: 1}))
	require.NoError(t, c.Put("k", payload{Code: "b", Close: 2}))

	var out payload
	found, err := c.Get("k", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "b", out.Code)
}

func TestCache_CorruptPayloadIsMiss(t *testing.T) {
	c := openTestCache(t, 24*time.Hour)

	_, err := c.db.Exec(
		`INSERT INTO cache_entries (key, fetched_at, payload) VALUES (?, ?, ?)`,
		"broken", time.Now().Unix(), []byte("{not json"),
	)
	require.NoError(t, err)

	var out payload
	found, err := c.Get("broken", &out)
	require.NoError(t, err)
	assert.False(t, found, "corrupt payload should read as a miss")

	// The corrupt row is dropped on read.
	var total int64
	require.NoError(t, c.db.QueryRow(`SELECT COUNT(*) FROM cache_entries WHERE key = 'broken'`).Scan(&total))
	assert.EqualValues(t, 0, total)
}

func TestCache_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := Open(path, 24*time.Hour, logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Put("k", payload{Code: "600000.SH", Close: 8.12}))
	require.NoError(t, c.Close())

	c2, err := Open(path, 24*time.Hour, logger.NewNop())
	require.NoError(t, err)
	defer c2.Close()

	var out payload
	found, err := c2.Get("k", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "600000.SH", out.Code)
}

func TestCache_Purge(t *testing.T) {
	c := openTestCache(t, 24*time.Hour)

	base := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return base })
	require.NoError(t, c.Put("old", payload{}))

	c.SetClock(func() time.Time { return base.Add(36 * time.Hour) })
	require.NoError(t, c.Put("fresh", payload{}))

	n, err := c.Purge()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	total, fresh, err := c.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.EqualValues(t, 1, fresh)
}
