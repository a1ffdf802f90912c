package airqloud

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/airsight/airsight/internal/geo"
)

// PostgresRepository is a PostgreSQL implementation of Repository. The
// polygon ring is stored as a JSONB array of [lon, lat] vertices.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL AirQloud repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List retrieves all AirQlouds for a tenant.
func (r *PostgresRepository) List(ctx context.Context, tenant string) ([]*AirQloud, error) {
	query := `
		SELECT id, tenant, name, admin_level, ring, created_at, updated_at
		FROM airqlouds
		WHERE tenant = lower($1)
	`

	rows, err := r.pool.Query(ctx, query, tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*AirQloud
	for rows.Next() {
		var (
			a        AirQloud
			ringJSON []byte
		)
		if err := rows.Scan(&a.ID, &a.Tenant, &a.Name, &a.AdminLevel, &ringJSON, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		var ring geo.Ring
		if err := json.Unmarshal(ringJSON, &ring); err != nil {
			return nil, fmt.Errorf("decoding ring for airqloud %s: %w", a.ID, err)
		}
		a.Ring = ring
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Insert persists a new AirQloud.
func (r *PostgresRepository) Insert(ctx context.Context, a *AirQloud) (*AirQloud, error) {
	ringJSON, err := json.Marshal(a.Ring)
	if err != nil {
		return nil, fmt.Errorf("encoding ring: %w", err)
	}

	cp := *a
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	now := time.Now()
	cp.CreatedAt = now
	cp.UpdatedAt = now

	query := `
		INSERT INTO airqlouds (id, tenant, name, admin_level, ring, created_at, updated_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7)
	`
	_, err = r.pool.Exec(ctx, query, cp.ID, cp.Tenant, cp.Name, cp.AdminLevel, ringJSON, cp.CreatedAt, cp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cp, nil
}
