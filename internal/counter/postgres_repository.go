package counter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL counter repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Next atomically increments the tenant's counter. The single UPDATE is
// the only atomicity this path needs; there is no surrounding transaction.
func (r *PostgresRepository) Next(ctx context.Context, tenant string) (int64, error) {
	query := `
		UPDATE unique_identifier_counters
		SET count = count + 1
		WHERE tenant = lower($1) AND name = $2
		RETURNING count
	`

	var count int64
	err := r.pool.QueryRow(ctx, query, tenant, CounterName).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrCounterNotFound
		}
		return 0, err
	}
	return count, nil
}
