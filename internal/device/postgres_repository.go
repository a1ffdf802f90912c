package device

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const deviceColumns = `id, tenant, name, site_id, network, status, created_at, updated_at`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL device repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a device by tenant and id.
func (r *PostgresRepository) Get(ctx context.Context, tenant, id string) (*Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM devices
		WHERE tenant = lower($1) AND id = $2
	`

	var d Device
	err := r.pool.QueryRow(ctx, query, tenant, id).Scan(
		&d.ID,
		&d.Tenant,
		&d.Name,
		&d.SiteID,
		&d.Network,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	return &d, nil
}

// List retrieves devices matching the options.
func (r *PostgresRepository) List(ctx context.Context, tenant string, opts ListOptions) ([]*Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM devices
		WHERE tenant = lower($1)
		  AND ($2 = '' OR site_id = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY created_at DESC
		LIMIT CASE WHEN $4 > 0 THEN $4 END
	`

	rows, err := r.pool.Query(ctx, query, tenant, opts.SiteID, string(opts.Status), opts.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*Device
	for rows.Next() {
		var d Device
		err := rows.Scan(
			&d.ID,
			&d.Tenant,
			&d.Name,
			&d.SiteID,
			&d.Network,
			&d.Status,
			&d.CreatedAt,
			&d.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		devices = append(devices, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return devices, nil
}

// Insert persists a new device.
func (r *PostgresRepository) Insert(ctx context.Context, d *Device) (*Device, error) {
	query := `
		INSERT INTO devices (id, tenant, name, site_id, network, status, created_at, updated_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		d.ID,
		d.Tenant,
		d.Name,
		d.SiteID,
		d.Network,
		d.Status,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	out := *d
	return &out, nil
}

// Update replaces the stored record.
func (r *PostgresRepository) Update(ctx context.Context, d *Device) (*Device, error) {
	query := `
		UPDATE devices SET
			name = $3,
			site_id = $4,
			network = $5,
			status = $6,
			updated_at = $7
		WHERE tenant = lower($1) AND id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		d.Tenant,
		d.ID,
		d.Name,
		d.SiteID,
		d.Network,
		d.Status,
		d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, ErrDeviceNotFound
	}

	out := *d
	return &out, nil
}

// Delete removes a device.
func (r *PostgresRepository) Delete(ctx context.Context, tenant, id string) error {
	query := `DELETE FROM devices WHERE tenant = lower($1) AND id = $2`

	result, err := r.pool.Exec(ctx, query, tenant, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
