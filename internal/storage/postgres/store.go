package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poolrebalancer/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS plan_snapshots (
	chain_id BIGINT NOT NULL,
	pool_address TEXT NOT NULL,
	observed_at TIMESTAMPTZ NOT NULL,
	token0 TEXT NOT NULL,
	token1 TEXT NOT NULL,
	symbol0 TEXT NOT NULL,
	symbol1 TEXT NOT NULL,
	decimals0 SMALLINT NOT NULL,
	decimals1 SMALLINT NOT NULL,
	reserve0 NUMERIC NOT NULL,
	reserve1 NUMERIC NOT NULL,
	target_price NUMERIC NOT NULL,
	direction TEXT NOT NULL,
	amount0 NUMERIC,
	amount1 NUMERIC,
	plan_error TEXT,
	exact_direction TEXT,
	exact_amount_in NUMERIC,
	exact_amount_out NUMERIC,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, pool_address, observed_at, target_price)
)`

// Store persists plan snapshots in Postgres.
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

// EnsureSchema creates the plan_snapshots table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// PutPlanBatch inserts plan snapshots. Re-delivered rows are ignored.
func (s *Store) PutPlanBatch(ctx context.Context, records []model.PlanRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		observedAt, err := time.Parse(time.RFC3339Nano, r.ObservedAt)
		if err != nil {
			return fmt.Errorf("parse observed_at %q: %w", r.ObservedAt, err)
		}
		batch.Queue(`
			INSERT INTO plan_snapshots (
				chain_id, pool_address, observed_at, token0, token1, symbol0, symbol1,
				decimals0, decimals1, reserve0, reserve1, target_price, direction,
				amount0, amount1, plan_error, exact_direction, exact_amount_in, exact_amount_out
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
			ON CONFLICT (chain_id, pool_address, observed_at, target_price) DO NOTHING
		`,
			int64(r.ChainID),
			r.Pool,
			observedAt,
			r.Token0,
			r.Token1,
			r.Symbol0,
			r.Symbol1,
			int16(r.Decimals0),
			int16(r.Decimals1),
			r.Reserve0,
			r.Reserve1,
			r.TargetPrice,
			r.Direction,
			nullable(r.Amount0),
			nullable(r.Amount1),
			nullable(r.PlanError),
			nullable(r.ExactDirection),
			nullable(r.ExactAmountIn),
			nullable(r.ExactAmountOut),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
