package geo

import (
	"errors"
	"math"
)

// EarthRadiusMeters is the spherical Earth radius used for great-circle math.
// A sphere is accurate to ~0.5%, plenty for geofence radii measured in meters.
const EarthRadiusMeters = 6371000.0

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point is within coordinate range.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Distance returns the Haversine great-circle distance between a and b in meters.
// Out-of-range coordinates return ErrInvalidCoordinate rather than NaN.
func Distance(a, b Point) (float64, error) {
	if !a.Valid() || !b.Valid() {
		return 0, ErrInvalidCoordinate
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c, nil
}

// Inside reports whether p lies within radiusMeters of center. The boundary
// itself counts as inside.
func Inside(p, center Point, radiusMeters float64) (bool, error) {
	d, err := Distance(p, center)
	if err != nil {
		return false, err
	}
	return d <= radiusMeters, nil
}
