package geo_test

import (
	"testing"

	"github.com/FieldPulse/FP-Attendance/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name      string
		a, b      geo.Point
		expect    float64
		tolerance float64
	}{
		{
			name:   "Same point",
			a:      geo.Point{Lat: 52.5200, Lng: 13.4050},
			b:      geo.Point{Lat: 52.5200, Lng: 13.4050},
			expect: 0,
		},
		{
			name:      "One degree of latitude at the equator",
			a:         geo.Point{Lat: 0, Lng: 0},
			b:         geo.Point{Lat: 1, Lng: 0},
			expect:    111195, // 6371000 * pi/180
			tolerance: 1,
		},
		{
			name:      "Berlin to Hamburg",
			a:         geo.Point{Lat: 52.5200, Lng: 13.4050},
			b:         geo.Point{Lat: 53.5511, Lng: 9.9937},
			expect:    255000,
			tolerance: 2000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := geo.Distance(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.expect, d, tt.tolerance)

			// Symmetry
			rev, err := geo.Distance(tt.b, tt.a)
			require.NoError(t, err)
			assert.Equal(t, d, rev)
		})
	}
}

func TestDistanceInvalidCoordinate(t *testing.T) {
	tests := []struct {
		name string
		a, b geo.Point
	}{
		{"Latitude above 90", geo.Point{Lat: 90.1, Lng: 0}, geo.Point{}},
		{"Latitude below -90", geo.Point{Lat: -91, Lng: 0}, geo.Point{}},
		{"Longitude above 180", geo.Point{Lat: 0, Lng: 180.5}, geo.Point{}},
		{"Invalid second argument", geo.Point{}, geo.Point{Lat: 0, Lng: -181}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := geo.Distance(tt.a, tt.b)
			assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
		})
	}
}

func TestInsideBoundaryInclusive(t *testing.T) {
	center := geo.Point{Lat: 0, Lng: 0}
	edge := geo.Point{Lat: 0, Lng: 0.001}

	// Use the computed distance as the radius so the point sits exactly on
	// the boundary.
	radius, err := geo.Distance(edge, center)
	require.NoError(t, err)

	inside, err := geo.Inside(edge, center, radius)
	require.NoError(t, err)
	assert.True(t, inside, "point at exactly radius must be inside")

	outside, err := geo.Inside(edge, center, radius-0.01)
	require.NoError(t, err)
	assert.False(t, outside, "point just past radius must be outside")
}
