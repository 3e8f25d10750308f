package service

import (
	"context"
	"errors"
	"fmt"

	"reverse-geocoding/internal/geohash"
	"reverse-geocoding/internal/metrics"
	"reverse-geocoding/internal/models"
)

// ErrInvalidCoordinate is returned for latitudes or longitudes out of range.
var ErrInvalidCoordinate = errors.New("service: invalid coordinate")

// ReverseGeoCodeService translates coordinates into prefecture, city or geohash text
type ReverseGeoCodeService struct {
	regions RegionLookup
}

// RegionLookup interface for dependency injection
type RegionLookup interface {
	Lookup(hash string) (models.AdministrativeRegion, bool)
	Precision() int
}

// NewReverseGeoCodeService creates a new reverse geo code service
func NewReverseGeoCodeService(regions RegionLookup) *ReverseGeoCodeService {
	return &ReverseGeoCodeService{regions: regions}
}

// Precision is the geohash length used for lookups.
func (s *ReverseGeoCodeService) Precision() int {
	return s.regions.Precision()
}

func (s *ReverseGeoCodeService) lookup(kind string, lat, lon float64) (models.AdministrativeRegion, bool) {
	region, ok := s.regions.Lookup(s.ToGeoHash(lat, lon))
	metrics.ObserveLookup(kind, ok)
	return region, ok
}

// ToPrefecture returns the prefecture of the cell containing the coordinate,
// or an empty string outside the table's coverage.
func (s *ReverseGeoCodeService) ToPrefecture(lat, lon float64) string {
	region, ok := s.lookup("pref", lat, lon)
	if !ok {
		return ""
	}
	return region.Prefecture
}

// ToCity returns prefecture, branch office, county and city joined together,
// or an empty string outside the table's coverage.
func (s *ReverseGeoCodeService) ToCity(lat, lon float64) string {
	region, ok := s.lookup("city", lat, lon)
	if !ok {
		return ""
	}
	return region.FullCity()
}

// ToGeoHash encodes the coordinate at the table precision. It does not
// depend on coverage.
func (s *ReverseGeoCodeService) ToGeoHash(lat, lon float64) string {
	return geohash.Encode(lat, lon, s.regions.Precision())
}

// ReverseGeocode resolves a single coordinate for the HTTP API. Unlike the
// filter path it rejects coordinates outside the valid range.
func (s *ReverseGeoCodeService) ReverseGeocode(_ context.Context, lat, lon float64) (*models.ReverseGeocodeResult, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("%w: latitude %f", ErrInvalidCoordinate, lat)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: longitude %f", ErrInvalidCoordinate, lon)
	}

	result := &models.ReverseGeocodeResult{
		Latitude:  lat,
		Longitude: lon,
		GeoHash:   s.ToGeoHash(lat, lon),
	}

	region, ok := s.lookup("api", lat, lon)
	if ok {
		result.Found = true
		result.Prefecture = region.Prefecture
		result.City = region.FullCity()
		result.Code = region.Code
	}

	return result, nil
}
