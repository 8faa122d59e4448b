package params

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
)

var ErrInvalidOrigin = errors.New("lat and lng must be valid coordinates")

// URL: /places/nearby?lat=9.93&lng=-84.08&radius=500&limit=10
// → ParseNearby() → Nearby{Lat:9.93, Lng:-84.08, Radius:500, Limit:10}
// Radius and Limit stay zero when absent or unusable; the caller applies
// its own defaults.
type Nearby struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Radius float64 `json:"radius"` // meters
	Limit  int     `json:"limit"`
}

// ParseNearby parses ?lat=...&lng=...&radius=...&limit=... Only the origin
// is mandatory.
func ParseNearby(q url.Values) (Nearby, error) {
	var n Nearby

	lat, errLat := parseFloat(q.Get("lat"))
	lng, errLng := parseFloat(q.Get("lng"))
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return n, ErrInvalidOrigin
	}
	n.Lat, n.Lng = lat, lng

	// --- Parse radius ---
	if radius, err := parseFloat(q.Get("radius")); err == nil && radius > 0 {
		n.Radius = radius
	}

	// --- Parse limit ---
	if limitStr := strings.TrimSpace(q.Get("limit")); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			n.Limit = limit
		}
	}

	return n, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}
