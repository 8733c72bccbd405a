// Package postgres implements the storage contracts on top of pgx. Sessions
// are pgx transactions; recipient and document access runs on the pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobcompass/internal/storage"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same store
// code serves pooled reads and transactional sessions.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store wraps a pgx pool and implements storage.Factory plus the pool-scoped
// recipient and document stores.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ storage.Factory        = (*Store)(nil)
	_ storage.RecipientStore = (*Store)(nil)
	_ storage.DocumentStore  = (*Store)(nil)
)

// Connect creates and verifies a pgxpool connection pool.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

// NewStore wires an existing pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Begin opens an isolated transactional session.
func (s *Store) Begin(ctx context.Context) (storage.Session, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}

	return &session{
		tx:       tx,
		listings: &listingStore{db: tx},
		ledger:   &deliveryLedger{db: tx},
	}, nil
}

// Migrate creates the schema when it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS recipients (
			id BIGSERIAL PRIMARY KEY,
			chat_id TEXT UNIQUE NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			desired_position TEXT NOT NULL DEFAULT '',
			skills TEXT NOT NULL DEFAULT '',
			base_resume TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS search_criteria (
			id BIGSERIAL PRIMARY KEY,
			recipient_id BIGINT UNIQUE NOT NULL REFERENCES recipients(id) ON DELETE CASCADE,
			position TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			min_salary INT NOT NULL DEFAULT 0,
			remote BOOLEAN NOT NULL DEFAULT FALSE,
			freshness_days INT NOT NULL DEFAULT 1,
			employment TEXT NOT NULL DEFAULT '',
			experience TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS listings (
			id BIGSERIAL PRIMARY KEY,
			source_id TEXT UNIQUE NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			employer TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			compensation TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			apply_url TEXT NOT NULL DEFAULT '',
			snippet TEXT NOT NULL DEFAULT '',
			published_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS delivery_status (
			id BIGSERIAL PRIMARY KEY,
			recipient_id BIGINT NOT NULL REFERENCES recipients(id) ON DELETE CASCADE,
			listing_id BIGINT NOT NULL REFERENCES listings(id),
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (recipient_id, listing_id)
		)`,
		`CREATE TABLE IF NOT EXISTS generated_documents (
			id BIGSERIAL PRIMARY KEY,
			recipient_id BIGINT NOT NULL REFERENCES recipients(id) ON DELETE CASCADE,
			listing_id BIGINT REFERENCES listings(id),
			doc_type TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
