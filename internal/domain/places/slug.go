package places

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxSlugLength = 48
	maxIDLength   = 64
	fallbackSlug  = "place"
)

var (
	nonAlnum  = regexp.MustCompile(`[^a-z0-9]+`)
	validID   = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	diacritic = runes.Remove(runes.In(unicode.Mn))
)

// Slugify derives the base identifier for a place name: accents folded,
// lowercased, runs of anything else collapsed to "-", trimmed and bounded.
func Slugify(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, diacritic, norm.NFC), name)
	if err != nil {
		folded = name
	}

	slug := nonAlnum.ReplaceAllString(strings.ToLower(folded), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

// ValidID reports whether id has the shape of a registry identifier.
func ValidID(id string) bool {
	return len(id) <= maxIDLength && validID.MatchString(id)
}

// NextFreeID returns base when unused, otherwise base-N for the smallest
// N >= 1 not present in taken.
func NextFreeID(base string, taken []string) string {
	used := make(map[string]struct{}, len(taken))
	for _, id := range taken {
		used[id] = struct{}{}
	}
	if _, ok := used[base]; !ok {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if _, ok := used[candidate]; !ok {
			return candidate
		}
	}
}
