package repository

import (
	"context"
	"fmt"

	"reverse-geocoding/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegionsSchema creates the table the importer fills and LoadRegionTable reads.
const RegionsSchema = `
	CREATE TABLE IF NOT EXISTS regions (
		geohash VARCHAR(12) PRIMARY KEY,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		prefecture VARCHAR(255),
		branch_office VARCHAR(255),
		county VARCHAR(255),
		city VARCHAR(255),
		code VARCHAR(16)
	);
`

// RegionColumns is the column order used for bulk copies into regions.
var RegionColumns = []string{"geohash", "latitude", "longitude", "prefecture", "branch_office", "county", "city", "code"}

// Repository reads reference regions stored in PostgreSQL
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// LoadRegionTable reads the whole regions table into an immutable RegionTable.
// NULL columns are read as empty strings or zero coordinates.
func (r *Repository) LoadRegionTable(ctx context.Context) (*RegionTable, error) {
	sql := `
		SELECT
			geohash,
			COALESCE(latitude, 0),
			COALESCE(longitude, 0),
			COALESCE(prefecture, ''),
			COALESCE(branch_office, ''),
			COALESCE(county, ''),
			COALESCE(city, ''),
			COALESCE(code, '')
		FROM regions
		ORDER BY geohash
	`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query regions: %w", err)
	}
	defer rows.Close()

	var regions []models.AdministrativeRegion
	for rows.Next() {
		var region models.AdministrativeRegion
		err := rows.Scan(
			&region.Hash,
			&region.Latitude,
			&region.Longitude,
			&region.Prefecture,
			&region.BranchOffice,
			&region.County,
			&region.City,
			&region.Code,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan region: %w", err)
		}
		regions = append(regions, region)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return NewRegionTable("postgres:regions", regions)
}

// CopyRegionsFrom returns a CopyFromSource over regions matching RegionColumns.
func CopyRegionsFrom(regions []models.AdministrativeRegion) pgx.CopyFromSource {
	return pgx.CopyFromSlice(len(regions), func(i int) ([]any, error) {
		r := regions[i]
		return []any{r.Hash, r.Latitude, r.Longitude, r.Prefecture, r.BranchOffice, r.County, r.City, r.Code}, nil
	})
}
