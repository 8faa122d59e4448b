package places

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceMeters(t *testing.T) {
	assert.Zero(t, DistanceMeters(*sanJose, *sanJose))

	// one degree of latitude is ~111.2 km
	d := DistanceMeters(Coords{Lat: 0, Lng: 0}, Coords{Lat: 1, Lng: 0})
	assert.InDelta(t, 111195, d, 10)
}

func TestClampNearby(t *testing.T) {
	r, l := ClampNearby(0, 0)
	assert.Equal(t, DefaultNearbyRadius, r)
	assert.Equal(t, DefaultNearbyLimit, l)

	r, l = ClampNearby(math.NaN(), 1000)
	assert.Equal(t, DefaultNearbyRadius, r)
	assert.Equal(t, MaxNearbyLimit, l)

	r, l = ClampNearby(250, 5)
	assert.Equal(t, 250.0, r)
	assert.Equal(t, 5, l)
}

func TestNearby(t *testing.T) {
	all := []Place{
		{ID: "parque-sabana", Name: "Parque La Sabana", Coords: &Coords{Lat: 9.938, Lng: -84.1008}},
		{ID: "mercado-central", Name: "Mercado Central", Coords: &Coords{Lat: 9.9343, Lng: -84.0818}},
		{ID: "no-coords", Name: "Nowhere"},
		{ID: "cafe-aurora", Name: "Café Aurora", Coords: &Coords{Lat: 9.9339, Lng: -84.0833}},
	}

	fc := Nearby(all, *sanJose, 5000, 0)
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 3)
	assert.Equal(t, "cafe-aurora", fc.Features[0].Properties.ID)
	assert.Equal(t, "mercado-central", fc.Features[1].Properties.ID)
	assert.Equal(t, "parque-sabana", fc.Features[2].Properties.ID)
	assert.Equal(t, []float64{-84.0818, 9.9343}, fc.Features[1].Geometry.Coordinates)

	fc = Nearby(all, *sanJose, 500, 0)
	assert.Len(t, fc.Features, 2)

	fc = Nearby(all, *sanJose, 5000, 1)
	assert.Len(t, fc.Features, 1)

	fc = Nearby(nil, *sanJose, 5000, 0)
	assert.NotNil(t, fc.Features)
	assert.Empty(t, fc.Features)
}
