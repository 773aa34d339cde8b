package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DailyDigest/internal/domain"
)

func openTestCache(t *testing.T, now *time.Time) *SQLiteCache {
	t.Helper()
	c, err := OpenSQLiteCache(filepath.Join(t.TempDir(), "cache", "feeds.db"), 30*time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	c.now = func() time.Time { return *now }
	return c
}

func TestCacheReadMissWhenEmpty(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := openTestCache(t, &now)

	articles, ok, err := c.Read(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, articles)
}

func TestCacheReturnsNewestUnexpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := openTestCache(t, &now)

	pub := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, c.Write(ctx, []domain.Article{{Title: "old", PubDate: pub}}, 3))
	now = now.Add(10 * time.Minute)
	require.NoError(t, c.Write(ctx, []domain.Article{{Title: "new", PubDate: pub, SourceName: "blog"}}, 4))

	articles, ok, err := c.Read(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, articles, 1)
	assert.Equal(t, "new", articles[0].Title)
	assert.Equal(t, "blog", articles[0].SourceName)
	assert.True(t, pub.Equal(articles[0].PubDate))

	now = now.Add(30 * time.Minute)
	_, ok, err = c.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "entry expires after the TTL")
}

func TestCacheWritePurgesExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := openTestCache(t, &now)

	require.NoError(t, c.Write(ctx, nil, 1))
	require.NoError(t, c.Write(ctx, nil, 1))
	now = now.Add(time.Hour)
	require.NoError(t, c.Write(ctx, []domain.Article{{Title: "fresh"}}, 1))

	n, err := c.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, c.Clear(ctx))
	n, err = c.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
