package site

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL site repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const siteColumns = `
	id, tenant, name, generated_name,
	latitude, longitude,
	approximate_latitude, approximate_longitude, bearing_in_radians, approximate_distance_in_km,
	lat_long,
	country, region, district, county, sub_county, parish, village,
	city, town, street, search_name, formatted_name, location_name, google_place_id,
	site_tags, altitude, network, data_provider, airqlouds,
	station_id, station_code, station_latitude, station_longitude,
	created_at, updated_at
`

// Insert persists a new site.
func (r *PostgresRepository) Insert(ctx context.Context, s *Site) (*Site, error) {
	cp := *s
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	now := time.Now()
	cp.CreatedAt = now
	cp.UpdatedAt = now

	query := `
		INSERT INTO sites (` + siteColumns + `)
		VALUES (
			$1, lower($2), $3, $4,
			$5, $6,
			$7, $8, $9, $10,
			$11,
			$12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25,
			$26, $27, $28, $29, $30,
			$31, $32, $33, $34,
			$35, $36
		)
	`
	_, err := r.pool.Exec(ctx, query, insertArgs(&cp)...)
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

// Update replaces the stored record for the site's tenant and id.
func (r *PostgresRepository) Update(ctx context.Context, s *Site) (*Site, error) {
	cp := *s
	cp.UpdatedAt = time.Now()

	query := `
		UPDATE sites SET
			name = $3, generated_name = $4,
			latitude = $5, longitude = $6,
			approximate_latitude = $7, approximate_longitude = $8,
			bearing_in_radians = $9, approximate_distance_in_km = $10,
			lat_long = $11,
			country = $12, region = $13, district = $14, county = $15,
			sub_county = $16, parish = $17, village = $18,
			city = $19, town = $20, street = $21, search_name = $22,
			formatted_name = $23, location_name = $24, google_place_id = $25,
			site_tags = $26, altitude = $27, network = $28, data_provider = $29,
			airqlouds = $30,
			station_id = $31, station_code = $32,
			station_latitude = $33, station_longitude = $34,
			updated_at = $35
		WHERE id = $1 AND tenant = lower($2)
	`
	args := insertArgs(&cp)
	// Drop created_at; updates never touch it.
	args = append(args[:len(args)-2], cp.UpdatedAt)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrSiteNotFound
	}
	return &cp, nil
}

// List retrieves sites matching the filter.
func (r *PostgresRepository) List(ctx context.Context, tenant string, f Filter) ([]*Site, error) {
	query := `
		SELECT ` + siteColumns + `
		FROM sites
		WHERE tenant = lower($1)
			AND ($2 = '' OR id = $2)
			AND ($3 = '' OR name = $3)
			AND ($4 = '' OR generated_name = $4)
			AND ($5 = '' OR lat_long = $5)
		ORDER BY created_at
		LIMIT CASE WHEN $6 > 0 THEN $6 ELSE NULL END
		OFFSET $7
	`

	rows, err := r.pool.Query(ctx, query,
		tenant, f.ID, f.Name, f.GeneratedName, f.LatLong, f.Limit, f.Skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func insertArgs(s *Site) []interface{} {
	var stationID, stationCode *string
	var stationLat, stationLon *float64
	if s.NearestStation != nil {
		stationID = &s.NearestStation.ID
		stationCode = &s.NearestStation.Code
		stationLat = &s.NearestStation.Latitude
		stationLon = &s.NearestStation.Longitude
	}

	return []interface{}{
		s.ID, s.Tenant, s.Name, s.GeneratedName,
		s.Latitude, s.Longitude,
		s.ApproximateLatitude, s.ApproximateLongitude, s.BearingInRadians, s.ApproximateDistanceInKm,
		s.LatLong,
		s.Country, s.Region, s.District, s.County, s.SubCounty, s.Parish, s.Village,
		s.City, s.Town, s.Street, s.SearchName, s.FormattedName, s.LocationName, s.GooglePlaceID,
		s.SiteTags, s.Altitude, s.Network, s.DataProvider, s.AirQlouds,
		stationID, stationCode, stationLat, stationLon,
		s.CreatedAt, s.UpdatedAt,
	}
}

func scanSite(row pgx.Row) (*Site, error) {
	var (
		s           Site
		stationID   *string
		stationCode *string
		stationLat  *float64
		stationLon  *float64
	)

	err := row.Scan(
		&s.ID, &s.Tenant, &s.Name, &s.GeneratedName,
		&s.Latitude, &s.Longitude,
		&s.ApproximateLatitude, &s.ApproximateLongitude, &s.BearingInRadians, &s.ApproximateDistanceInKm,
		&s.LatLong,
		&s.Country, &s.Region, &s.District, &s.County, &s.SubCounty, &s.Parish, &s.Village,
		&s.City, &s.Town, &s.Street, &s.SearchName, &s.FormattedName, &s.LocationName, &s.GooglePlaceID,
		&s.SiteTags, &s.Altitude, &s.Network, &s.DataProvider, &s.AirQlouds,
		&stationID, &stationCode, &stationLat, &stationLon,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if stationID != nil {
		s.NearestStation = &StationRef{
			ID:        *stationID,
			Code:      *stationCode,
			Latitude:  *stationLat,
			Longitude: *stationLon,
		}
	}
	return &s, nil
}
