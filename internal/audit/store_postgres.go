package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"edge-authorizer/pkg/utils"

	"github.com/jackc/pgx/v5"
)

// PostgresStore writes records into a single table keyed by event_id.
//
// Postgres has no native TTL: rows carry their expiry in the ttl column and
// Purge deletes them. Run a Sweeper next to the store.
//
// Schema (see EnsureSchema):
//
//	event_id   text PRIMARY KEY
//	region     text
//	event_type text
//	request_id text
//	created_at timestamptz
//	ttl        bigint  -- epoch seconds
//	item       jsonb   -- flattened Record.Item()
type PostgresStore struct {
	db     *sql.DB
	table  string
	index  string
	region string
}

func NewPostgresStore(db *sql.DB, table, region string) *PostgresStore {
	return &PostgresStore{
		db:     db,
		table:  pgx.Identifier{table}.Sanitize(),
		index:  pgx.Identifier{table + "_ttl_idx"}.Sanitize(),
		region: region,
	}
}

// EnsureSchema creates the table and its expiry index when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return ErrNilStore
	}
	create := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  event_id   text PRIMARY KEY,
  region     text NOT NULL,
  event_type text NOT NULL,
  request_id text NOT NULL,
  created_at timestamptz NOT NULL,
  ttl        bigint NOT NULL,
  item       jsonb NOT NULL
)`, s.table)
	index := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (ttl)`, s.index, s.table)

	return utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, create); err != nil {
			return fmt.Errorf("audit: create table: %w", err)
		}
		if _, err := tx.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("audit: create ttl index: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) Put(ctx context.Context, r Record, ttlEpochSeconds int64) error {
	if s == nil || s.db == nil {
		return ErrNilStore
	}
	if r.ID == "" {
		return ErrInvalidRecord
	}

	payload, err := json.Marshal(r.Item())
	if err != nil {
		return fmt.Errorf("audit: marshal %s: %w", r.ID, err)
	}

	q := fmt.Sprintf(`
INSERT INTO %s (event_id, region, event_type, request_id, created_at, ttl, item)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (event_id) DO NOTHING
`, s.table)
	_, err = s.db.ExecContext(ctx, q,
		r.ID,
		s.region,
		string(r.EventType),
		r.RequestID,
		r.CreatedAt,
		ttlEpochSeconds,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("audit: postgres put %s: %w", r.ID, err)
	}
	return nil
}

// Purge deletes rows whose ttl is at or before now and reports how many went.
func (s *PostgresStore) Purge(ctx context.Context, now time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrNilStore
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE ttl <= $1`, s.table)
	res, err := s.db.ExecContext(ctx, q, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("audit: purge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("audit: purge rows affected: %w", err)
	}
	return n, nil
}
