package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"intelligence-layer/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps cache entries in a single table with whole-value
// upserts. TTL is enforced on read via created_at; a sweep can be run with
// DeleteExpired. Read problems are reported as a miss, never an error.
type PostgresStore struct {
	db     *pgxpool.Pool
	ttl    time.Duration
	logger *slog.Logger
}

func NewPostgresStore(db *pgxpool.Pool, ttl time.Duration, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{db: db, ttl: ttl, logger: logger}
}

// EnsureSchema creates the cache table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS analysis_cache (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure cache schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool) {
	var value []byte
	var createdAt time.Time
	query := `SELECT value, created_at FROM analysis_cache WHERE key = $1`
	if err := s.db.QueryRow(ctx, query, key).Scan(&value, &createdAt); err != nil {
		return nil, false
	}
	if s.ttl > 0 && time.Since(createdAt) > s.ttl {
		return nil, false
	}
	if len(value) == 0 {
		return nil, false
	}
	return value, true
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO analysis_cache (key, value, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, created_at = now()
	`
	if _, err := s.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to upsert cache entry: %w", err)
	}
	return nil
}

// DeleteExpired removes entries past the TTL and returns how many went away.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	tag, err := s.db.Exec(ctx,
		`DELETE FROM analysis_cache WHERE created_at < now() - $1::interval`,
		fmt.Sprintf("%d seconds", int(s.ttl.Seconds())))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ domain.CacheStore = (*PostgresStore)(nil)
