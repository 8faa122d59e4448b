package storage_test

import (
	"context"
	"sync"
	"testing"

	"luggo/internal/domain/places"
	"luggo/internal/domain/reviews"
	"luggo/internal/domain/storage"
	"luggo/internal/domain/users"
	"luggo/internal/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seedAccount = storage.SeedConfig{Username: "demo", Password: "demo1234", DisplayName: "Demo User"}

func TestCreateReview(t *testing.T) {
	c := memstore.New()
	ctx := context.Background()

	created, err := c.CreateReview(ctx,
		places.Candidate{Name: "Café Aurora", Address: "San Jose, CR", Coords: &places.Coords{Lat: 9.9339, Lng: -84.0833}, Photo: "aurora.jpg"},
		reviews.Fields{Rating: 5, Tags: []string{"cafe, wifi"}},
		reviews.Author{UID: "u1", DisplayName: "Ana"},
	)
	require.NoError(t, err)
	assert.Equal(t, places.OutcomeCreated, created.Outcome)
	assert.Equal(t, "cafe-aurora", created.Place.ID)
	assert.Equal(t, "cafe-aurora", created.Review.PlaceID)
	assert.NotZero(t, created.Review.ID)
	assert.Equal(t, "aurora.jpg", created.Review.Photo)
	assert.Zero(t, created.Review.Up)
	assert.Zero(t, created.Review.Down)

	again, err := c.CreateReview(ctx,
		places.Candidate{ID: "cafe-aurora"},
		reviews.Fields{Rating: 4},
		reviews.Author{UID: "u2"},
	)
	require.NoError(t, err)
	assert.Equal(t, places.OutcomeUpserted, again.Outcome)
	assert.Equal(t, "Café Aurora", again.Place.Name)

	n, err := c.Reviews.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCreateReviewFailuresLeaveNoPlace(t *testing.T) {
	c := memstore.New()
	ctx := context.Background()

	_, err := c.CreateReview(ctx,
		places.Candidate{Name: "Soda Tapia", Coords: &places.Coords{Lat: 1, Lng: 1}},
		reviews.Fields{Rating: 0},
		reviews.Author{UID: "u1"},
	)
	assert.ErrorIs(t, err, reviews.ErrInvalidRating)

	_, err = c.CreateReview(ctx, places.Candidate{Name: "Soda Tapia"}, reviews.Fields{Rating: 3}, reviews.Author{UID: "u1"})
	assert.ErrorIs(t, err, places.ErrCoordsRequired)

	list, err := c.Places.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateReviewConcurrentSameName(t *testing.T) {
	c := memstore.New()
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := c.CreateReview(ctx,
				places.Candidate{Name: "Mercado Central", Coords: &places.Coords{Lat: 9.9343, Lng: -84.0818}},
				reviews.Fields{Rating: 4},
				reviews.Author{UID: "u1"},
			)
			if err == nil {
				ids <- created.Place.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, 8)
	assert.True(t, seen["mercado-central"])
}

func TestSeedIsIdempotent(t *testing.T) {
	c := memstore.New()
	ctx := context.Background()

	account, err := storage.Seed(ctx, c, seedAccount)
	require.NoError(t, err)
	assert.Equal(t, users.LocalUID("demo"), account.UID)
	require.NoError(t, account.Password.Compare("demo1234"))

	_, err = storage.Seed(ctx, c, seedAccount)
	require.NoError(t, err)

	list, err := c.Reviews.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, r := range list {
		assert.Equal(t, "Demo User", r.AuthorName)
		assert.Zero(t, r.Up)
		assert.Zero(t, r.Down)
	}

	all, err := c.Places.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	u, err := c.Users.GetByUsername(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, account.UID, u.UID)
}

func TestSeedSkipsReviewsWhenDataExists(t *testing.T) {
	c := memstore.New()
	ctx := context.Background()

	_, err := c.CreateReview(ctx,
		places.Candidate{Name: "Soda Tapia", Coords: &places.Coords{Lat: 9.93, Lng: -84.1}},
		reviews.Fields{Rating: 3},
		reviews.Author{UID: "u1"},
	)
	require.NoError(t, err)

	_, err = storage.Seed(ctx, c, seedAccount)
	require.NoError(t, err)

	n, err := c.Reviews.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := c.Places.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
