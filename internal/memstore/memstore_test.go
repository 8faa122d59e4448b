package memstore

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"luggo/internal/domain/places"
	"luggo/internal/domain/reviews"
	"luggo/internal/domain/storage"
	"luggo/internal/domain/users"
	"luggo/internal/domain/votes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReview(t *testing.T, c *storage.Container) *reviews.Review {
	t.Helper()
	ctx := context.Background()

	place, _, err := places.NewRegistry(c.Places).ResolveOrCreate(ctx, places.Candidate{
		Name:    "Café Aurora",
		Address: "San Jose, CR",
		Coords:  &places.Coords{Lat: 9.9339, Lng: -84.0833},
		Photo:   "aurora.jpg",
	})
	require.NoError(t, err)

	review, err := reviews.New(place, reviews.Fields{Rating: 5}, reviews.Author{UID: "author"})
	require.NoError(t, err)
	require.NoError(t, c.Reviews.Create(ctx, review))
	return review
}

func TestCastScenario(t *testing.T) {
	c := New()
	ctx := context.Background()
	review := seedReview(t, c)

	steps := []struct {
		intent   votes.Value
		up, down int
	}{
		{votes.Up, 1, 0},
		{votes.Up, 1, 0},
		{votes.Down, 0, 1},
		{votes.None, 0, 0},
		{votes.None, 0, 0},
	}
	for _, s := range steps {
		tally, _, err := c.Votes.Cast(ctx, review.ID, "u1", s.intent)
		require.NoError(t, err)
		assert.Equal(t, s.up, tally.Up)
		assert.Equal(t, s.down, tally.Down)

		stored, err := c.Reviews.Get(ctx, review.ID)
		require.NoError(t, err)
		assert.Equal(t, s.up, stored.Up)
		assert.Equal(t, s.down, stored.Down)
	}
}

func TestCastErrors(t *testing.T) {
	c := New()
	review := seedReview(t, c)

	_, _, err := c.Votes.Cast(context.Background(), review.ID, "", votes.Up)
	assert.ErrorIs(t, err, votes.ErrVoterRequired)

	_, _, err = c.Votes.Cast(context.Background(), 999, "u1", votes.Up)
	assert.ErrorIs(t, err, votes.ErrReviewNotFound)

	_, _, err = c.Votes.Cast(context.Background(), review.ID, "u1", votes.Value(5))
	assert.ErrorIs(t, err, votes.ErrInvalidValue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = c.Votes.Cast(ctx, review.ID, "u1", votes.Up)
	assert.ErrorIs(t, err, context.Canceled)
}

// Counters equal the number of recorded votes of each polarity after any
// interleaving of voters and intents.
func TestCountersMatchVoteRecords(t *testing.T) {
	c := New()
	ctx := context.Background()
	review := seedReview(t, c)

	rng := rand.New(rand.NewSource(42))
	intents := []votes.Value{votes.Up, votes.Down, votes.None}
	voters := []string{"u1", "u2", "u3", "u4", "u5"}

	last := map[string]votes.Value{}
	for i := 0; i < 500; i++ {
		voter := voters[rng.Intn(len(voters))]
		intent := intents[rng.Intn(len(intents))]
		_, _, err := c.Votes.Cast(ctx, review.ID, voter, intent)
		require.NoError(t, err)
		last[voter] = intent
	}

	var wantUp, wantDown int
	for _, v := range last {
		switch v {
		case votes.Up:
			wantUp++
		case votes.Down:
			wantDown++
		}
	}

	stored, err := c.Reviews.Get(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, wantUp, stored.Up)
	assert.Equal(t, wantDown, stored.Down)

	recount, err := c.Votes.Recount(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, wantUp, recount.Up)
	assert.Equal(t, wantDown, recount.Down)
}

func TestConcurrentCast(t *testing.T) {
	c := New()
	ctx := context.Background()
	review := seedReview(t, c)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			voter := []string{"u1", "u2", "u3"}[i%3]
			intent := []votes.Value{votes.Up, votes.Down}[i%2]
			_, _, _ = c.Votes.Cast(ctx, review.ID, voter, intent)
		}(i)
	}
	wg.Wait()

	stored, err := c.Reviews.Get(ctx, review.ID)
	require.NoError(t, err)
	recount, err := c.Votes.Recount(ctx, review.ID)
	require.NoError(t, err)

	assert.Equal(t, recount.Up, stored.Up)
	assert.Equal(t, recount.Down, stored.Down)
	assert.Equal(t, 3, stored.Up+stored.Down)
}

func TestReviewListJoinsPlaceAndViewer(t *testing.T) {
	c := New()
	ctx := context.Background()
	review := seedReview(t, c)

	_, _, err := c.Votes.Cast(ctx, review.ID, "u1", votes.Down)
	require.NoError(t, err)

	list, err := c.Reviews.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Café Aurora", list[0].PlaceName)
	assert.Equal(t, "aurora.jpg", list[0].Photo)
	assert.Equal(t, "San Jose, CR", list[0].City)
	require.NotNil(t, list[0].MyVote)
	assert.Equal(t, -1, *list[0].MyVote)

	list, err = c.Reviews.List(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, list[0].MyVote)
}

func TestReviewCreateValidates(t *testing.T) {
	c := New()
	ctx := context.Background()

	err := c.Reviews.Create(ctx, &reviews.Review{PlaceID: "missing", Rating: 3})
	assert.ErrorIs(t, err, places.ErrNotFound)

	err = c.Reviews.Create(ctx, &reviews.Review{PlaceID: "missing", Rating: 9})
	assert.ErrorIs(t, err, reviews.ErrInvalidRating)

	rv := &reviews.Review{PlaceID: "missing", Rating: 3, Up: 5, Down: 2}
	seedReview(t, c)
	rv.PlaceID = "cafe-aurora"
	require.NoError(t, c.Reviews.Create(ctx, rv))
	assert.Zero(t, rv.Up)
	assert.Zero(t, rv.Down)
}

func TestResetKeepsUsers(t *testing.T) {
	c := New()
	ctx := context.Background()
	review := seedReview(t, c)
	require.NoError(t, c.Users.Upsert(ctx, &users.User{UID: "u1", DisplayName: "Ana"}))
	_, _, err := c.Votes.Cast(ctx, review.ID, "u1", votes.Up)
	require.NoError(t, err)

	cleared, err := c.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, storage.Cleared{Reviews: 1, Places: 1, Votes: 1}, cleared)

	n, err := c.Reviews.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	u, err := c.Users.GetByUID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.DisplayName)
}

func TestUserUpsertKeepsKnownName(t *testing.T) {
	c := New()
	ctx := context.Background()

	require.NoError(t, c.Users.Upsert(ctx, &users.User{UID: "u1", DisplayName: "Ana"}))

	u := &users.User{UID: "u1"}
	require.NoError(t, c.Users.Upsert(ctx, u))
	assert.Equal(t, "Ana", u.DisplayName)

	require.NoError(t, c.Users.Upsert(ctx, &users.User{UID: "u1", DisplayName: "Ana María"}))
	got, err := c.Users.GetByUID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana María", got.DisplayName)

	_, err = c.Users.GetByUsername(ctx, "")
	assert.ErrorIs(t, err, users.ErrNotFound)
}
