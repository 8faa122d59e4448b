package places

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"accents folded", "Café Aurora", "cafe-aurora"},
		{"punctuation collapsed", "  Pão & Cia!!  Centro ", "pao-cia-centro"},
		{"already a slug", "mercado-central", "mercado-central"},
		{"digits kept", "Soda 24/7", "soda-24-7"},
		{"nothing usable", "¡¿?!", "place"},
		{"empty", "", "place"},
		{"non latin letters dropped", "東京 Station", "station"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyBoundsLength(t *testing.T) {
	slug := Slugify(strings.Repeat("abcde ", 20))

	assert.LessOrEqual(t, len(slug), maxSlugLength)
	assert.False(t, strings.HasSuffix(slug, "-"))
	assert.True(t, ValidID(slug))
}

func TestValidID(t *testing.T) {
	valid := []string{"cafe-aurora", "cafe-aurora-1", "a", "24-7"}
	invalid := []string{"", "Cafe", "cafe aurora", "-cafe", "cafe-", "cafe--aurora", "café", strings.Repeat("a", maxIDLength+1)}

	for _, id := range valid {
		assert.True(t, ValidID(id), id)
	}
	for _, id := range invalid {
		assert.False(t, ValidID(id), id)
	}
}

func TestNextFreeID(t *testing.T) {
	assert.Equal(t, "cafe", NextFreeID("cafe", nil))
	assert.Equal(t, "cafe", NextFreeID("cafe", []string{"cafe-1"}))
	assert.Equal(t, "cafe-1", NextFreeID("cafe", []string{"cafe"}))
	assert.Equal(t, "cafe-3", NextFreeID("cafe", []string{"cafe", "cafe-1", "cafe-2"}))
	assert.Equal(t, "cafe-2", NextFreeID("cafe", []string{"cafe-3", "cafe", "cafe-1"}))
}
