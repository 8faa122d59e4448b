package storage

import (
	"context"
	"fmt"

	"luggo/internal/domain/places"
	"luggo/internal/domain/reviews"
	"luggo/internal/domain/users"
)

type SeedConfig struct {
	Username    string
	Password    string
	DisplayName string
}

var defaultPlaces = []places.Candidate{
	{
		ID:      "cafe-aurora",
		Name:    "Café Aurora",
		Address: "San Jose, CR",
		Coords:  &places.Coords{Lat: 9.9339, Lng: -84.0833},
		Photo:   "https://images.unsplash.com/photo-1541167760496-1628856ab772?q=80&w=1200&auto=format&fit=crop",
	},
	{
		ID:      "parque-sabana",
		Name:    "Parque La Sabana",
		Address: "San Jose, CR",
		Coords:  &places.Coords{Lat: 9.938, Lng: -84.1008},
		Photo:   "https://images.unsplash.com/photo-1558981359-219d6364c9b8?q=80&w=1200&auto=format&fit=crop",
	},
	{
		ID:      "mercado-central",
		Name:    "Mercado Central",
		Address: "San Jose, CR",
		Coords:  &places.Coords{Lat: 9.9343, Lng: -84.0818},
		Photo:   "https://images.unsplash.com/photo-1542831371-29b0f74f9713?q=80&w=1200&auto=format&fit=crop",
	},
}

var defaultReviews = []struct {
	placeID string
	fields  reviews.Fields
}{
	{"cafe-aurora", reviews.Fields{Rating: 5, Note: "Creamy cappuccino and a shaded terrace. Great for studying.", Tags: []string{"cafe, wifi, brunch"}}},
	{"parque-sabana", reviews.Fields{Rating: 4, Note: "Good place to run at sunset. Bring mosquito repellent.", Tags: []string{"outdoors, running"}}},
	{"mercado-central", reviews.Fields{Rating: 5, Note: "Tasty and cheap traditional food stalls. Try the casado.", Tags: []string{"traditional food, cheap"}}},
}

// Seed upserts the local account and the default places, and inserts the
// default reviews when no review exists yet. Seeded reviews start with zero
// counters like any other review.
func Seed(ctx context.Context, c *Container, cfg SeedConfig) (*users.User, error) {
	account := &users.User{
		UID:         users.LocalUID(cfg.Username),
		Username:    cfg.Username,
		DisplayName: cfg.DisplayName,
	}
	if err := account.Password.Set(cfg.Password); err != nil {
		return nil, fmt.Errorf("hash default password: %w", err)
	}
	if err := c.Users.EnsureLocal(ctx, account); err != nil {
		return nil, err
	}

	registry := places.NewRegistry(c.Places)
	seeded := make(map[string]*places.Place, len(defaultPlaces))
	for _, candidate := range defaultPlaces {
		place, _, err := registry.ResolveOrCreate(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("seed place %s: %w", candidate.ID, err)
		}
		seeded[place.ID] = place
	}

	count, err := c.Reviews.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}
	if count > 0 {
		return account, nil
	}

	author := reviews.Author{UID: account.UID, DisplayName: account.DisplayName}
	for _, dr := range defaultReviews {
		review, err := reviews.New(seeded[dr.placeID], dr.fields, author)
		if err != nil {
			return nil, err
		}
		if err := c.Reviews.Create(ctx, review); err != nil {
			return nil, fmt.Errorf("seed review for %s: %w", dr.placeID, err)
		}
	}
	return account, nil
}
