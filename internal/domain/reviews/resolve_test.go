package reviews

import (
	"net/url"
	"strings"
	"testing"

	"luggo/internal/domain/places"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePhoto(t *testing.T) {
	photo, src := ResolvePhoto(" own.jpg ", "place.jpg", "Café")
	assert.Equal(t, "own.jpg", photo)
	assert.Equal(t, PhotoExplicit, src)

	photo, src = ResolvePhoto("", "place.jpg", "Café")
	assert.Equal(t, "place.jpg", photo)
	assert.Equal(t, PhotoPlace, src)

	photo, src = ResolvePhoto("  ", "", "Café")
	assert.Equal(t, PlaceholderPhoto("Café"), photo)
	assert.Equal(t, PhotoPlaceholder, src)
}

func TestStoredPhotoNeverUsesPlaceholder(t *testing.T) {
	assert.Equal(t, "own.jpg", StoredPhoto("own.jpg", "place.jpg"))
	assert.Equal(t, "place.jpg", StoredPhoto("", "place.jpg"))
	assert.Empty(t, StoredPhoto("", " "))
}

func TestPlaceholderPhoto(t *testing.T) {
	photo := PlaceholderPhoto("Soda <Tapia>")
	require.True(t, strings.HasPrefix(photo, "data:image/svg+xml,"))

	svg, err := url.PathUnescape(strings.TrimPrefix(photo, "data:image/svg+xml,"))
	require.NoError(t, err)
	assert.Contains(t, svg, "Soda &lt;Tapia&gt;")

	assert.Equal(t, photo, PlaceholderPhoto("Soda <Tapia>"))
	assert.Contains(t, PlaceholderPhoto(""), "Place")
}

func TestResolveCoords(t *testing.T) {
	own := &places.Coords{Lat: 1, Lng: 2}
	place := &places.Coords{Lat: 3, Lng: 4}

	assert.Equal(t, own, ResolveCoords(own, place))
	assert.NotSame(t, own, ResolveCoords(own, place))
	assert.Equal(t, place, ResolveCoords(nil, place))
	assert.Nil(t, ResolveCoords(nil, nil))
}
