package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/ports"
)

const cacheTable = "feed_cache"

const schema = `CREATE TABLE IF NOT EXISTS feed_cache (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at   INTEGER NOT NULL,
	source_count INTEGER NOT NULL,
	articles     TEXT    NOT NULL
)`

// SQLiteCache keeps timestamped snapshots of fetched articles in a single
// SQLite file. Entries older than the TTL are ignored and purged on write.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

var _ ports.FeedCache = (*SQLiteCache)(nil)

// OpenSQLiteCache opens (or creates) the cache database at path.
func OpenSQLiteCache(path string, ttl time.Duration) (*SQLiteCache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache table: %w", err)
	}

	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SQLiteCache{db: db, ttl: ttl, now: time.Now}, nil
}

// Close releases the database handle.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Read returns the newest unexpired snapshot. The bool is false on a miss.
func (c *SQLiteCache) Read(ctx context.Context) ([]domain.Article, bool, error) {
	cutoff := c.now().Add(-c.ttl).UnixMilli()

	query, args, err := sq.Select("articles", "source_count", "created_at").
		From(cacheTable).
		Where(sq.Gt{"created_at": cutoff}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build cache query: %w", err)
	}

	var (
		payload     string
		sourceCount int
		createdAt   int64
	)
	err = c.db.QueryRowContext(ctx, query, args...).Scan(&payload, &sourceCount, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache: %w", err)
	}

	var articles []domain.Article
	if err := json.Unmarshal([]byte(payload), &articles); err != nil {
		return nil, false, fmt.Errorf("decode cached articles: %w", err)
	}
	return articles, true, nil
}

// Write purges expired snapshots and stores a new one.
func (c *SQLiteCache) Write(ctx context.Context, articles []domain.Article, sourceCount int) error {
	now := c.now()

	payload, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("encode articles: %w", err)
	}

	purge, purgeArgs, err := sq.Delete(cacheTable).
		Where(sq.LtOrEq{"created_at": now.Add(-c.ttl).UnixMilli()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build purge: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, purge, purgeArgs...); err != nil {
		return fmt.Errorf("purge expired cache: %w", err)
	}

	insert, insertArgs, err := sq.Insert(cacheTable).
		Columns("created_at", "source_count", "articles").
		Values(now.UnixMilli(), sourceCount, string(payload)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, insert, insertArgs...); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// Clear removes every snapshot.
func (c *SQLiteCache) Clear(ctx context.Context) error {
	query, args, err := sq.Delete(cacheTable).ToSql()
	if err != nil {
		return fmt.Errorf("build clear: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Entries counts stored snapshots, expired or not.
func (c *SQLiteCache) Entries(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From(cacheTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache: %w", err)
	}
	return n, nil
}
