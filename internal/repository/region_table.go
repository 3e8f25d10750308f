package repository

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"reverse-geocoding/internal/geohash"
	"reverse-geocoding/internal/models"
)

// BundledDataset is the name of the reference dataset compiled into the binary.
const BundledDataset = "data/geohash5.csv"

//go:embed data/geohash5.csv
var bundledGeoHash5 []byte

// Column layout of the reference dataset:
// geohash, latitude, longitude, prefecture, branch office, county, city, code
const (
	idxHash = iota
	idxLat
	idxLon
	idxPref
	idxBranch
	idxCounty
	idxCity
	idxCode
	regionFieldCount
)

// ErrEmptyDataset is returned when a reference dataset holds no regions.
var ErrEmptyDataset = errors.New("repository: reference dataset contains no regions")

// RegionTable maps a geohash cell to its administrative region.
// It is filled once by a loader and never written afterwards, so any number
// of goroutines may call Lookup without synchronization.
type RegionTable struct {
	regions   map[string]models.AdministrativeRegion
	precision int
	source    string
}

// NewRegionTable builds a table from already materialized regions.
// Every hash must be valid and of the same length; a duplicate hash replaces
// the earlier entry.
func NewRegionTable(source string, regions []models.AdministrativeRegion) (*RegionTable, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, source)
	}

	t := &RegionTable{
		regions: make(map[string]models.AdministrativeRegion, len(regions)),
		source:  source,
	}
	for _, r := range regions {
		if err := t.put(r); err != nil {
			return nil, fmt.Errorf("repository: %s: %w", source, err)
		}
	}
	return t, nil
}

func (t *RegionTable) put(r models.AdministrativeRegion) error {
	if !geohash.Valid(r.Hash) {
		return fmt.Errorf("invalid geohash %q", r.Hash)
	}
	if t.precision == 0 {
		t.precision = len(r.Hash)
	} else if len(r.Hash) != t.precision {
		return fmt.Errorf("geohash %q has precision %d, table precision is %d", r.Hash, len(r.Hash), t.precision)
	}
	t.regions[r.Hash] = r
	return nil
}

// LoadRegionTable parses a reference dataset. The first row is a header.
func LoadRegionTable(source string, r io.Reader) (*RegionTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Short rows are padded below

	// Skip header
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, source)
		}
		return nil, fmt.Errorf("repository: failed to read header of %s: %w", source, err)
	}

	t := &RegionTable{
		regions: make(map[string]models.AdministrativeRegion),
		source:  source,
	}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("repository: failed to read %s: %w", source, err)
		}

		line, _ := reader.FieldPos(0)
		region, err := parseRegion(record)
		if err != nil {
			return nil, fmt.Errorf("repository: %s line %d: %w", source, line, err)
		}
		if err := t.put(region); err != nil {
			return nil, fmt.Errorf("repository: %s line %d: %w", source, line, err)
		}
	}

	if len(t.regions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, source)
	}
	return t, nil
}

// LoadRegionTableFile loads a reference dataset from disk.
func LoadRegionTableFile(path string) (*RegionTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to open reference dataset: %w", err)
	}
	defer f.Close()

	return LoadRegionTable(path, f)
}

// LoadBundledRegionTable loads the precision 5 dataset embedded in the binary.
func LoadBundledRegionTable() (*RegionTable, error) {
	return LoadRegionTable(BundledDataset, bytes.NewReader(bundledGeoHash5))
}

func parseRegion(record []string) (models.AdministrativeRegion, error) {
	fields := make([]string, regionFieldCount)
	for i := 0; i < regionFieldCount && i < len(record); i++ {
		fields[i] = strings.TrimSpace(record[i])
	}

	lat, err := parseCoordinate(fields[idxLat])
	if err != nil {
		return models.AdministrativeRegion{}, fmt.Errorf("invalid latitude %q: %w", fields[idxLat], err)
	}
	lon, err := parseCoordinate(fields[idxLon])
	if err != nil {
		return models.AdministrativeRegion{}, fmt.Errorf("invalid longitude %q: %w", fields[idxLon], err)
	}

	return models.AdministrativeRegion{
		Hash:         fields[idxHash],
		Latitude:     lat,
		Longitude:    lon,
		Prefecture:   fields[idxPref],
		BranchOffice: fields[idxBranch],
		County:       fields[idxCounty],
		City:         fields[idxCity],
		Code:         fields[idxCode],
	}, nil
}

func parseCoordinate(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// Lookup returns the region of a geohash cell.
func (t *RegionTable) Lookup(hash string) (models.AdministrativeRegion, bool) {
	r, ok := t.regions[hash]
	return r, ok
}

// Precision is the geohash length of every key in the table.
func (t *RegionTable) Precision() int {
	return t.precision
}

// Len returns the number of regions.
func (t *RegionTable) Len() int {
	return len(t.regions)
}

// Source names where the table was loaded from.
func (t *RegionTable) Source() string {
	return t.source
}

// Regions returns a copy of all entries, in no particular order.
func (t *RegionTable) Regions() []models.AdministrativeRegion {
	out := make([]models.AdministrativeRegion, 0, len(t.regions))
	for _, r := range t.regions {
		out = append(out, r)
	}
	return out
}
