package places

import (
	"math"
	"sort"
)

const (
	earthRadiusMeters   = 6371000.0
	DefaultNearbyRadius = 3000.0
	DefaultNearbyLimit  = 50
	MaxNearbyLimit      = 200
)

// GeoJSON types for the nearby endpoint.
type GeoJSONGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lng, lat]
}

type GeoJSONProperties struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Photo     string  `json:"photo"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Distance  float64 `json:"distance"`
}

type GeoJSONFeature struct {
	Type       string            `json:"type"`
	Geometry   GeoJSONGeometry   `json:"geometry"`
	Properties GeoJSONProperties `json:"properties"`
}

type GeoJSONFeatureCollection struct {
	Type     string           `json:"type"`
	Features []GeoJSONFeature `json:"features"`
}

// DistanceMeters is the great-circle distance between two points.
func DistanceMeters(a, b Coords) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ClampNearby applies the endpoint defaults: radius <= 0 means the default
// radius, limit is clamped into [1, MaxNearbyLimit].
func ClampNearby(radius float64, limit int) (float64, int) {
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		radius = DefaultNearbyRadius
	}
	switch {
	case limit <= 0:
		limit = DefaultNearbyLimit
	case limit > MaxNearbyLimit:
		limit = MaxNearbyLimit
	}
	return radius, limit
}

// Nearby returns places with coordinates inside radius of origin, nearest
// first, as a feature collection.
func Nearby(all []Place, origin Coords, radius float64, limit int) GeoJSONFeatureCollection {
	radius, limit = ClampNearby(radius, limit)

	features := make([]GeoJSONFeature, 0)
	for _, p := range all {
		if p.Coords == nil {
			continue
		}
		d := DistanceMeters(origin, *p.Coords)
		if d > radius {
			continue
		}
		features = append(features, GeoJSONFeature{
			Type: "Feature",
			Geometry: GeoJSONGeometry{
				Type:        "Point",
				Coordinates: []float64{p.Coords.Lng, p.Coords.Lat},
			},
			Properties: GeoJSONProperties{
				ID:        p.ID,
				Name:      p.Name,
				Address:   p.Address,
				Photo:     p.Photo,
				Latitude:  p.Coords.Lat,
				Longitude: p.Coords.Lng,
				Distance:  d,
			},
		})
	}

	sort.SliceStable(features, func(i, j int) bool {
		return features[i].Properties.Distance < features[j].Properties.Distance
	})
	if len(features) > limit {
		features = features[:limit]
	}

	return GeoJSONFeatureCollection{Type: "FeatureCollection", Features: features}
}
