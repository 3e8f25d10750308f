// Package geohash encodes coordinates into base32 geohash cells and decodes
// cells back into their bounding boxes.
package geohash

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// Alphabet is the standard geohash base32 symbol set.
const Alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

const bitsPerSymbol = 5

// Encode returns the geohash of (lat, lon) with the given number of symbols.
// Longitude and latitude ranges are bisected alternately, longitude first;
// a point on a midpoint falls into the upper half. Inputs outside
// [-90,90] / [-180,180] are not validated.
func Encode(lat, lon float64, precision int) string {
	if precision < 1 {
		return ""
	}

	latRange := [2]float64{-90, 90}
	lonRange := [2]float64{-180, 180}

	var sb strings.Builder
	sb.Grow(precision)

	even := true
	bit, ch := 0, 0
	for sb.Len() < precision {
		ch <<= 1
		if even {
			mid := (lonRange[0] + lonRange[1]) / 2
			if lon >= mid {
				ch |= 1
				lonRange[0] = mid
			} else {
				lonRange[1] = mid
			}
		} else {
			mid := (latRange[0] + latRange[1]) / 2
			if lat >= mid {
				ch |= 1
				latRange[0] = mid
			} else {
				latRange[1] = mid
			}
		}
		even = !even

		if bit++; bit == bitsPerSymbol {
			sb.WriteByte(Alphabet[ch])
			bit, ch = 0, 0
		}
	}
	return sb.String()
}

// EncodePoint is Encode for an orb.Point (lon, lat order).
func EncodePoint(p orb.Point, precision int) string {
	return Encode(p.Lat(), p.Lon(), precision)
}

// Bound decodes a geohash into the cell it denotes.
func Bound(hash string) (orb.Bound, error) {
	if hash == "" {
		return orb.Bound{}, fmt.Errorf("geohash: empty hash")
	}

	latRange := [2]float64{-90, 90}
	lonRange := [2]float64{-180, 180}

	even := true
	for i := 0; i < len(hash); i++ {
		v := strings.IndexByte(Alphabet, hash[i])
		if v < 0 {
			return orb.Bound{}, fmt.Errorf("geohash: invalid symbol %q in %q", hash[i], hash)
		}
		for shift := bitsPerSymbol - 1; shift >= 0; shift-- {
			upper := v>>shift&1 == 1
			if even {
				mid := (lonRange[0] + lonRange[1]) / 2
				if upper {
					lonRange[0] = mid
				} else {
					lonRange[1] = mid
				}
			} else {
				mid := (latRange[0] + latRange[1]) / 2
				if upper {
					latRange[0] = mid
				} else {
					latRange[1] = mid
				}
			}
			even = !even
		}
	}

	return orb.Bound{
		Min: orb.Point{lonRange[0], latRange[0]},
		Max: orb.Point{lonRange[1], latRange[1]},
	}, nil
}

// Center returns the midpoint of the cell.
func Center(hash string) (orb.Point, error) {
	b, err := Bound(hash)
	if err != nil {
		return orb.Point{}, err
	}
	return b.Center(), nil
}

// Valid reports whether hash is non-empty and uses only Alphabet symbols.
func Valid(hash string) bool {
	if hash == "" {
		return false
	}
	for i := 0; i < len(hash); i++ {
		if strings.IndexByte(Alphabet, hash[i]) < 0 {
			return false
		}
	}
	return true
}
