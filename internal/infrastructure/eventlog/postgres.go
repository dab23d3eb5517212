package eventlog

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artulabs/swap-router/internal/domain/entities"
)

// PostgresRecorder persists the event log in Postgres.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

// NewPostgresRecorder connects to Postgres and ensures the log table
// exists.
func NewPostgresRecorder(ctx context.Context, dsn string) (*PostgresRecorder, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	r := &PostgresRecorder{pool: pool}
	if err := r.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the connection pool
func (r *PostgresRecorder) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

func (r *PostgresRecorder) migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS swap_events (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			spender TEXT NOT NULL DEFAULT '',
			token TEXT NOT NULL DEFAULT '',
			amount NUMERIC,
			token_in TEXT NOT NULL DEFAULT '',
			token_out TEXT NOT NULL DEFAULT '',
			trader TEXT NOT NULL DEFAULT '',
			tx_hash TEXT NOT NULL DEFAULT '',
			emitted_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create swap_events table: %w", err)
	}
	return nil
}

// Append inserts one event. The table is append-only: rows are never
// updated or deleted.
func (r *PostgresRecorder) Append(ctx context.Context, ev entities.Event) error {
	var amount *string
	if ev.Amount != nil {
		s := ev.Amount.String()
		amount = &s
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO swap_events (name, spender, token, amount, token_in, token_out, trader, tx_hash, emitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		ev.Name,
		hexOrEmpty(ev.Spender),
		hexOrEmpty(ev.Token),
		amount,
		hexOrEmpty(ev.TokenIn),
		hexOrEmpty(ev.TokenOut),
		hexOrEmpty(ev.Trader),
		ev.TxHash.Hex(),
		ev.EmittedAt,
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// List returns events matching the filter, oldest first.
func (r *PostgresRecorder) List(ctx context.Context, f Filter) ([]entities.Event, error) {
	query := `
		SELECT name, spender, token, amount, token_in, token_out, trader, tx_hash, emitted_at
		FROM swap_events WHERE 1=1`
	args := []interface{}{}

	if f.Name != "" {
		args = append(args, f.Name)
		query += fmt.Sprintf(" AND name = $%d", len(args))
	}
	if f.Trader != (common.Address{}) {
		args = append(args, f.Trader.Hex())
		query += fmt.Sprintf(" AND trader = $%d", len(args))
	}
	if f.Token != (common.Address{}) {
		args = append(args, f.Token.Hex())
		query += fmt.Sprintf(" AND (token = $%d OR token_in = $%d OR token_out = $%d)", len(args), len(args), len(args))
	}
	query += " ORDER BY id ASC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []entities.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func scanEvent(rows pgx.Rows) (entities.Event, error) {
	var (
		ev        entities.Event
		spender   string
		token     string
		amount    *string
		tokenIn   string
		tokenOut  string
		trader    string
		txHash    string
		emittedAt time.Time
	)
	if err := rows.Scan(&ev.Name, &spender, &token, &amount, &tokenIn, &tokenOut, &trader, &txHash, &emittedAt); err != nil {
		return entities.Event{}, fmt.Errorf("scan event: %w", err)
	}

	ev.Spender = common.HexToAddress(spender)
	ev.Token = common.HexToAddress(token)
	ev.TokenIn = common.HexToAddress(tokenIn)
	ev.TokenOut = common.HexToAddress(tokenOut)
	ev.Trader = common.HexToAddress(trader)
	ev.TxHash = common.HexToHash(txHash)
	ev.EmittedAt = emittedAt
	if amount != nil {
		if v, ok := new(big.Int).SetString(*amount, 10); ok {
			ev.Amount = v
		}
	}
	return ev, nil
}

func hexOrEmpty(addr common.Address) string {
	if addr == (common.Address{}) {
		return ""
	}
	return addr.Hex()
}
