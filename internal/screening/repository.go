package screening

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mhzhou/ashare-screener/internal/contracts"
)

// Repository persists screening run history to PostgreSQL. It is optional:
// runs work fully without it when no database is configured.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a screening repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the run history tables if they do not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS screening`,
		`CREATE TABLE IF NOT EXISTS screening.runs (
			id            BIGSERIAL PRIMARY KEY,
			trade_date    DATE NOT NULL,
			mode          TEXT NOT NULL,
			board_filter  TEXT NOT NULL DEFAULT '',
			total_rows    INT NOT NULL,
			total_skipped INT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (trade_date, mode, board_filter)
		)`,
		`CREATE TABLE IF NOT EXISTS screening.results (
			id             BIGSERIAL PRIMARY KEY,
			run_id         BIGINT NOT NULL REFERENCES screening.runs(id) ON DELETE CASCADE,
			ts_code        TEXT NOT NULL,
			symbol         TEXT NOT NULL,
			name           TEXT NOT NULL,
			board          TEXT NOT NULL,
			exchange_name  TEXT NOT NULL,
			last_price     DOUBLE PRECISION NOT NULL,
			pct_change     DOUBLE PRECISION NOT NULL,
			class          TEXT NOT NULL,
			streak_days    INT NOT NULL,
			return_60d     DOUBLE PRECISION NOT NULL,
			volatility_20d DOUBLE PRECISION NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run_id ON screening.results(run_id)`,
	}
	for _, stmt := range stmts {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure screening schema: %w", err)
		}
	}
	return nil
}

// SaveRun stores one run, replacing any earlier run for the same trade
// date, mode and board filter.
func (r *Repository) SaveRun(ctx context.Context, result *contracts.RunResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	skipped := 0
	for _, n := range result.Skipped {
		skipped += n
	}

	var runID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO screening.runs (trade_date, mode, board_filter, total_rows, total_skipped)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (trade_date, mode, board_filter) DO UPDATE SET
			total_rows = EXCLUDED.total_rows,
			total_skipped = EXCLUDED.total_skipped,
			created_at = NOW()
		RETURNING id
	`, result.TradeDate, string(result.Mode), result.Board, len(result.Rows), skipped).Scan(&runID)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM screening.results WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("clear old results: %w", err)
	}

	query := `
		INSERT INTO screening.results (
			run_id, ts_code, symbol, name, board, exchange_name,
			last_price, pct_change, class, streak_days, return_60d, volatility_20d
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	for _, row := range result.Rows {
		_, err := tx.Exec(ctx, query,
			runID, row.TSCode, row.Symbol, row.Name, row.Board, row.ExchangeName,
			row.LastPrice, row.PctChange, string(row.Class),
			row.StreakDays, row.Return60, row.Volatility20,
		)
		if err != nil {
			return fmt.Errorf("insert result row %s: %w", row.TSCode, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}
