package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"luggo/internal/domain/places"

	"github.com/goccy/go-json"
)

var (
	ErrNotFound          = errors.New("review not found")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrPlaceRequired     = errors.New("review must reference a place")
	QueryTimeoutDuration = time.Second * 5
)

const (
	MinRating = 1
	MaxRating = 5

	defaultAuthorName = "Author"
)

type Review struct {
	ID         int64          `json:"id"`
	PlaceID    string         `json:"placeId"`
	PlaceName  string         `json:"placeName,omitempty"`
	AuthorUID  string         `json:"authorId"`
	AuthorName string         `json:"authorName"`
	Rating     int            `json:"rating"`
	Note       string         `json:"note"`
	Tags       []string       `json:"tags"`
	Photo      string         `json:"photo"`
	City       string         `json:"city"`
	Coords     *places.Coords `json:"coords"`
	ImageIDs   []string       `json:"imageIds"`
	Up         int            `json:"up"`
	Down       int            `json:"down"`
	MyVote     *int           `json:"myVote,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Author is the identity a review is attributed to.
type Author struct {
	UID         string
	DisplayName string
}

// Fields are the user-supplied parts of a new review.
type Fields struct {
	Rating   int
	Note     string
	Tags     []string
	Photo    string
	City     string
	Coords   *places.Coords
	ImageIDs []string
}

type Store interface {
	Create(ctx context.Context, review *Review) error
	// List returns every review, newest first. A non-empty viewer fills MyVote.
	List(ctx context.Context, viewer string) ([]Review, error)
	Get(ctx context.Context, id int64) (*Review, error)
	Count(ctx context.Context) (int, error)
}

// New builds the record for a review of place. Counters always start at zero.
func New(place *places.Place, f Fields, author Author) (*Review, error) {
	if place == nil || place.ID == "" {
		return nil, ErrPlaceRequired
	}
	if f.Rating < MinRating || f.Rating > MaxRating {
		return nil, ErrInvalidRating
	}

	authorName := firstNonEmpty(author.DisplayName, place.Name, defaultAuthorName)
	city := firstNonEmpty(strings.TrimSpace(f.City), place.Address)

	imageIDs := f.ImageIDs
	if imageIDs == nil {
		imageIDs = []string{}
	}

	return &Review{
		PlaceID:    place.ID,
		PlaceName:  place.Name,
		AuthorUID:  author.UID,
		AuthorName: authorName,
		Rating:     f.Rating,
		Note:       strings.TrimSpace(f.Note),
		Tags:       NormalizeTags(f.Tags),
		Photo:      strings.TrimSpace(f.Photo),
		City:       city,
		Coords:     ResolveCoords(f.Coords, place.Coords),
		ImageIDs:   imageIDs,
	}, nil
}

// NormalizeTags splits every entry on commas, trims, and drops empties.
// Order and duplicates are kept.
func NormalizeTags(raw []string) []string {
	tags := []string{}
	for _, entry := range raw {
		for _, tag := range strings.Split(entry, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// TagList decodes either a comma separated string or a list of strings.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = TagList{single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.New("tags must be a string or a list of strings")
	}
	*t = list
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
