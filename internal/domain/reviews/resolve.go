package reviews

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"luggo/internal/domain/places"
)

type PhotoSource int

const (
	PhotoNone PhotoSource = iota
	PhotoExplicit
	PhotoPlace
	PhotoPlaceholder
)

// ResolvePhoto picks the image shown for a review: the review's own photo,
// then the place's photo, then a placeholder generated from the place name.
// The placeholder is for rendering only and is never stored.
func ResolvePhoto(explicit, placePhoto, placeName string) (string, PhotoSource) {
	chain := []struct {
		source  PhotoSource
		resolve func() string
	}{
		{PhotoExplicit, func() string { return strings.TrimSpace(explicit) }},
		{PhotoPlace, func() string { return strings.TrimSpace(placePhoto) }},
		{PhotoPlaceholder, func() string { return PlaceholderPhoto(placeName) }},
	}

	for _, step := range chain {
		if photo := step.resolve(); photo != "" {
			return photo, step.source
		}
	}
	return "", PhotoNone
}

// StoredPhoto is ResolvePhoto without the placeholder step.
func StoredPhoto(explicit, placePhoto string) string {
	return firstNonEmpty(strings.TrimSpace(explicit), strings.TrimSpace(placePhoto))
}

// PlaceholderPhoto renders a deterministic SVG data URL with the name on it.
func PlaceholderPhoto(name string) string {
	if strings.TrimSpace(name) == "" {
		name = "Place"
	}
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 640 360">`+
		`<rect fill="#1f2937" width="640" height="360"/>`+
		`<text x="50%%" y="50%%" dominant-baseline="middle" text-anchor="middle" `+
		`font-family="Segoe UI, Roboto, sans-serif" font-size="36" fill="#e5e7eb">%s</text></svg>`,
		html.EscapeString(name))
	return "data:image/svg+xml," + url.PathEscape(svg)
}

// ResolveCoords prefers the review's own coordinates over the place's.
func ResolveCoords(explicit, place *places.Coords) *places.Coords {
	switch {
	case explicit != nil:
		c := *explicit
		return &c
	case place != nil:
		c := *place
		return &c
	default:
		return nil
	}
}
