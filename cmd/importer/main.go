package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"reverse-geocoding/internal/config"
	"reverse-geocoding/internal/geohash"
	"reverse-geocoding/internal/logger"
	"reverse-geocoding/internal/models"
	"reverse-geocoding/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

func main() {
	file := flag.String("file", "", "Path to the reference CSV file to import (default: bundled dataset)")
	truncate := flag.Bool("truncate", false, "Delete existing regions before importing")
	flag.Parse()

	logger.Setup("info", true)

	source := *file
	if source == "" {
		source = repository.BundledDataset
	}
	log.Info().Str("file", source).Msg("starting import")

	table, err := loadTable(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot parse reference dataset")
	}

	regions, rejected := validateRegions(table.Regions())
	for _, r := range rejected {
		log.Warn().Str("geohash", r.Hash).Float64("lat", r.Latitude).Float64("lon", r.Longitude).Msg("centroid outside geohash cell, skipped")
	}
	log.Info().Int("regions", len(regions)).Int("rejected", len(rejected)).Int("precision", table.Precision()).Msg("parsed reference dataset")

	// Load config
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	// Connect to DB
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close(ctx)

	if err := importRegions(ctx, conn, regions, *truncate); err != nil {
		log.Error().Err(err).Msg("import failed")
		conn.Close(ctx)
		os.Exit(1)
	}

	log.Info().Int("regions", len(regions)).Msg("successfully imported regions")
}

func loadTable(path string) (*repository.RegionTable, error) {
	if path == "" {
		return repository.LoadBundledRegionTable()
	}
	return repository.LoadRegionTableFile(path)
}

// validateRegions splits regions into those whose centroid lies inside their
// geohash cell and those whose centroid does not.
func validateRegions(regions []models.AdministrativeRegion) (valid, rejected []models.AdministrativeRegion) {
	for _, r := range regions {
		bound, err := geohash.Bound(r.Hash)
		if err != nil || !bound.Contains(orb.Point{r.Longitude, r.Latitude}) {
			rejected = append(rejected, r)
			continue
		}
		valid = append(valid, r)
	}
	return valid, rejected
}

func importRegions(ctx context.Context, conn *pgx.Conn, regions []models.AdministrativeRegion, truncate bool) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Ensure table exists
	if _, err := tx.Exec(ctx, repository.RegionsSchema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if truncate {
		if _, err := tx.Exec(ctx, "TRUNCATE regions"); err != nil {
			return fmt.Errorf("failed to truncate regions: %w", err)
		}
	}

	// Use CopyFrom for bulk insert
	n, err := tx.CopyFrom(ctx, pgx.Identifier{"regions"}, repository.RegionColumns, repository.CopyRegionsFrom(regions))
	if err != nil {
		return fmt.Errorf("failed to copy regions: %w", err)
	}
	if int(n) != len(regions) {
		return fmt.Errorf("record count mismatch: expected %d, copied %d", len(regions), n)
	}

	// Verify data
	var count int
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM regions").Scan(&count); err != nil {
		return fmt.Errorf("failed to count regions: %w", err)
	}
	if count < len(regions) {
		return fmt.Errorf("record count mismatch: expected at least %d, got %d", len(regions), count)
	}

	return tx.Commit(ctx)
}
