package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contractScope/internal/model"
)

// Schema creates the tables the store writes to.
const Schema = `
CREATE TABLE IF NOT EXISTS contract_events (
	chain_id       BIGINT  NOT NULL,
	block_number   BIGINT  NOT NULL,
	block_hash     TEXT    NOT NULL,
	tx_hash        TEXT    NOT NULL,
	log_index      BIGINT  NOT NULL,
	address        TEXT    NOT NULL,
	contract_name  TEXT,
	abi_name       TEXT,
	event_name     TEXT,
	decoded        BOOLEAN NOT NULL,
	block_ts       BIGINT  NOT NULL,
	payload        JSONB   NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, tx_hash, log_index)
);
CREATE INDEX IF NOT EXISTS contract_events_address_block ON contract_events (address, block_number);
CREATE TABLE IF NOT EXISTS scanner_state (
	name                 TEXT PRIMARY KEY,
	last_processed_block BIGINT NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store persists decoded events and scan progress in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema applies Schema.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// PutEventBatch upserts event records keyed by chain, tx hash and log index.
func (s *Store) PutEventBatch(ctx context.Context, events []model.EventRecord) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, ev := range events {
		payload, err := json.Marshal(ev.Event)
		if err != nil {
			return fmt.Errorf("marshal event %s:%d: %w", ev.TxHash, ev.LogIndex, err)
		}
		batch.Queue(`
			INSERT INTO contract_events (
				chain_id, block_number, block_hash, tx_hash, log_index, address,
				contract_name, abi_name, event_name, decoded, block_ts, payload, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now(),now())
			ON CONFLICT (chain_id, tx_hash, log_index)
			DO UPDATE SET
				block_number = EXCLUDED.block_number,
				block_hash = EXCLUDED.block_hash,
				contract_name = EXCLUDED.contract_name,
				abi_name = EXCLUDED.abi_name,
				event_name = EXCLUDED.event_name,
				decoded = EXCLUDED.decoded,
				payload = EXCLUDED.payload,
				updated_at = now()
		`,
			int64(ev.ChainID),
			int64(ev.BlockNumber),
			ev.BlockHash,
			ev.TxHash,
			int64(ev.LogIndex),
			ev.Address,
			ev.ContractName,
			ev.AbiName,
			ev.Event.EventName,
			ev.Event.Decoded,
			int64(ev.Timestamp),
			payload,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns the last processed block recorded under name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM scanner_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(block), true, nil
}

// SaveState upserts the last processed block for name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scanner_state (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, int64(block))
	return err
}
