package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads engine results from the table the engine publishes to. It
// never writes.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by a pgx pool.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const latestRunSQL = `
    SELECT payload::text
    FROM engine_runs
    WHERE status = 'done'
    ORDER BY created_at DESC
    LIMIT 1
`

// Process returns the newest completed engine run.
func (s *Store) Process(ctx context.Context) (Output, error) {
	var payload string
	if err := s.pool.QueryRow(ctx, latestRunSQL).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Output{}, fmt.Errorf("%w: no completed run", ErrUnavailable)
		}
		return Output{}, fmt.Errorf("%w: query latest run: %v", ErrUnavailable, err)
	}
	return DecodeBytes([]byte(payload))
}
