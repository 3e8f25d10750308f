package models

// AdministrativeRegion is one geohash cell of the reference dataset together with the Japanese administrative hierarchy it belongs to.
type AdministrativeRegion struct {
	Hash         string  `json:"hash"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Prefecture   string  `json:"prefecture"`
	BranchOffice string  `json:"branch_office"`
	County       string  `json:"county"`
	City         string  `json:"city"`
	Code         string  `json:"code"`
}

// FullCity joins prefecture, branch office, county and city without separators.
func (r AdministrativeRegion) FullCity() string {
	return r.Prefecture + r.BranchOffice + r.County + r.City
}

// ReverseGeocodeResult is the answer to a single coordinate query.
type ReverseGeocodeResult struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	GeoHash    string  `json:"geohash"`
	Found      bool    `json:"found"`
	Prefecture string  `json:"prefecture"`
	City       string  `json:"city"`
	Code       string  `json:"code"`
}
