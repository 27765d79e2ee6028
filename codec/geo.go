package codec

import (
	"fmt"

	"github.com/mmcloughlin/geohash"
	"github.com/uber/h3-go/v4"
)

const (
	// MaxGeohashPrecision is the longest geohash that fits 64 bits
	MaxGeohashPrecision = 12
	// DefaultGeohashPrecision applies when no precision is supplied
	DefaultGeohashPrecision = 12

	MinH3Resolution     = 1
	MaxH3Resolution     = 15
	DefaultH3Resolution = 12
)

const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

var geohashValid = func() (table [256]bool) {
	for i := 0; i < len(geohashAlphabet); i++ {
		table[geohashAlphabet[i]] = true
	}
	return table
}()

// GeohashEncode encodes a coordinate as a base32 geohash of precision characters.
func GeohashEncode(lat, long float64, precision int64) (string, error) {
	if precision < 1 || precision > MaxGeohashPrecision {
		return "", fmt.Errorf("invalid length specified: %d", precision)
	}
	if err := checkCoordinate(lat, long); err != nil {
		return "", err
	}
	return geohash.EncodeWithPrecision(lat, long, uint(precision)), nil
}

// GeohashDecode returns the center of the cell named by code.
func GeohashDecode(code string) (long, lat float64, err error) {
	if err := validateGeohash(code); err != nil {
		return 0, 0, err
	}
	lat, long = geohash.DecodeCenter(code)
	return long, lat, nil
}

// GeohashNeighbors returns the eight adjacent cells of code in the order
// n, ne, e, se, s, sw, w, nw.
func GeohashNeighbors(code string) ([]string, error) {
	if code == "" {
		return nil, fmt.Errorf("invalid hash length: 0")
	}
	if err := validateGeohash(code); err != nil {
		return nil, err
	}
	return geohash.Neighbors(code), nil
}

func validateGeohash(code string) error {
	if len(code) > MaxGeohashPrecision {
		return fmt.Errorf("invalid hash length: %d", len(code))
	}
	for i := 0; i < len(code); i++ {
		if !geohashValid[code[i]] {
			return fmt.Errorf("invalid hash character: %q", code[i])
		}
	}
	return nil
}

func checkCoordinate(lat, long float64) error {
	if lat < -90 || lat > 90 || long < -180 || long > 180 {
		return fmt.Errorf("invalid coordinate range: latitude %v, longitude %v", lat, long)
	}
	return nil
}

// CheckH3Resolution validates an H3 resolution
func CheckH3Resolution(resolution int64) error {
	if resolution < MinH3Resolution || resolution > MaxH3Resolution {
		return fmt.Errorf("expected resolution between %d and %d, got %d",
			MinH3Resolution, MaxH3Resolution, resolution)
	}
	return nil
}

// H3Encode returns the hex index of the H3 cell containing a coordinate
func H3Encode(lat, long float64, resolution int64) (string, error) {
	if err := CheckH3Resolution(resolution); err != nil {
		return "", err
	}
	if err := checkCoordinate(lat, long); err != nil {
		return "", err
	}
	cell := h3.LatLngToCell(h3.NewLatLng(lat, long), int(resolution))
	return cell.String(), nil
}
