package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityZap/internal/model"
)

// Store provides Postgres persistence for zap history.
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

// EnsureSchema creates the history table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS zap_events (
			id BIGSERIAL PRIMARY KEY,
			kind TEXT NOT NULL,
			caller TEXT NOT NULL,
			pair TEXT NOT NULL,
			token_a TEXT NOT NULL,
			token_b TEXT NOT NULL,
			token TEXT NOT NULL,
			amount_in NUMERIC,
			liquidity_minted NUMERIC,
			liquidity_in NUMERIC,
			amount_out NUMERIC,
			ts BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutZapRecords inserts a batch of committed zap records.
func (s *Store) PutZapRecords(ctx context.Context, records []model.ZapRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(`
			INSERT INTO zap_events (
				kind, caller, pair, token_a, token_b, token,
				amount_in, liquidity_minted, liquidity_in, amount_out, ts
			) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::numeric, NULLIF($8, '')::numeric, NULLIF($9, '')::numeric, NULLIF($10, '')::numeric, $11)
		`,
			record.Kind,
			record.Caller,
			record.Pair,
			record.TokenA,
			record.TokenB,
			record.Token,
			record.AmountIn,
			record.LiquidityMinted,
			record.LiquidityIn,
			record.AmountOut,
			record.Timestamp,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert zap record: %w", err)
		}
	}
	return nil
}
