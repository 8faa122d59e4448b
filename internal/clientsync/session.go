package clientsync

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"luggo/internal/domain/places"
	"luggo/internal/domain/reviews"
	"luggo/internal/domain/votes"

	"golang.org/x/sync/singleflight"
)

var (
	ErrSelectPoint  = errors.New("select a point on the map")
	ErrPlaceName    = errors.New("place name is required")
	ErrRatingRange  = errors.New("rating must be between 1 and 5")
	ErrReviewAbsent = errors.New("review is not in the local cache")
)

// Draft is a review being composed. Tags are entered as one comma list.
// Coords pins the review itself; when nil the place's coordinates apply.
type Draft struct {
	Place    PlaceInput
	Rating   int
	Note     string
	Tags     string
	Photo    string
	City     string
	Coords   *places.Coords
	ImageIDs []string
}

// Session binds an API client to a cache for one signed-in user at a time.
type Session struct {
	client   *APIClient
	cache    *Cache
	inflight singleflight.Group
}

func NewSession(client *APIClient, cache *Cache) *Session {
	return &Session{client: client, cache: cache}
}

func (s *Session) Cache() *Cache {
	return s.cache
}

// SignIn verifies token with the server and makes it the active identity.
func (s *Session) SignIn(ctx context.Context, token string) (*Identity, error) {
	user, err := s.client.Session(ctx, token)
	if err != nil {
		return nil, err
	}
	ident := &Identity{UID: user.ID, DisplayName: user.DisplayName, Token: token}
	s.cache.SetIdentity(ident)
	return ident, nil
}

// SignInLocal logs in with the service's own account.
func (s *Session) SignInLocal(ctx context.Context, username, password string) (*Identity, error) {
	tok, err := s.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	ident := &Identity{UID: tok.User.ID, DisplayName: tok.User.DisplayName, Token: tok.Token}
	s.cache.SetIdentity(ident)
	return ident, nil
}

// SignOut clears the identity locally. No request is made.
func (s *Session) SignOut() {
	s.cache.SetIdentity(nil)
}

// Refresh reloads places and reviews, with myVote when signed in.
func (s *Session) Refresh(ctx context.Context) error {
	ps, err := s.client.ListPlaces(ctx)
	if err != nil {
		return err
	}
	list, err := s.client.ListReviews(ctx, s.token())
	if err != nil {
		return err
	}
	s.cache.Replace(ps, list)
	return nil
}

// Vote handles a press of the up (1) or down (-1) control. Pressing the
// control matching the current vote clears it. Concurrent presses on the
// same review share the first request and its result.
//
// The shared request is detached from ctx and bounded by the client
// timeout instead. Cancelling ctx returns ctx.Err() to this caller only;
// the request still completes and its tally lands in the cache.
func (s *Session) Vote(ctx context.Context, reviewID int64, pressed votes.Value) (votes.Tally, error) {
	if pressed != votes.Up && pressed != votes.Down {
		return votes.Tally{}, votes.ErrInvalidValue
	}

	ident := s.cache.Identity()
	if ident == nil {
		s.cache.SetStatus(reviewID, statusText(ErrAuthRequired))
		return votes.Tally{}, ErrAuthRequired
	}

	flight := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(strconv.FormatInt(reviewID, 10), func() (any, error) {
		return s.vote(flight, ident, reviewID, pressed)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return votes.Tally{}, res.Err
		}
		return res.Val.(votes.Tally), nil
	case <-ctx.Done():
		return votes.Tally{}, ctx.Err()
	}
}

func (s *Session) vote(ctx context.Context, ident *Identity, reviewID int64, pressed votes.Value) (votes.Tally, error) {
	snapshot, ok := s.cache.Review(reviewID)
	if !ok {
		return votes.Tally{}, ErrReviewAbsent
	}

	current := snapshot.CurrentVote()
	intent := pressed
	if pressed == current {
		intent = votes.None
	}

	t, err := votes.Apply(current, intent)
	if err != nil {
		return votes.Tally{}, err
	}
	optimistic := votes.Tally{ReviewID: reviewID, Up: snapshot.Up, Down: snapshot.Down, My: current}.Add(t)
	s.cache.ApplyTally(ident.UID, optimistic)
	s.cache.SetStatus(reviewID, "")

	tally, err := s.client.Vote(ctx, ident.Token, reviewID, intent)
	if err != nil {
		s.cache.Restore(ident.UID, snapshot, statusText(err))
		return votes.Tally{}, err
	}

	s.cache.ApplyTally(ident.UID, tally)
	return tally, nil
}

// SubmitReview posts d and merges the result. d is reset on success.
func (s *Session) SubmitReview(ctx context.Context, d *Draft) (*reviews.Review, *places.Place, error) {
	ident := s.cache.Identity()
	if ident == nil {
		return nil, nil, ErrAuthRequired
	}
	if strings.TrimSpace(d.Place.Name) == "" {
		return nil, nil, ErrPlaceName
	}
	if d.Place.ID == "" && d.Place.Coords == nil {
		return nil, nil, ErrSelectPoint
	}
	if d.Rating < reviews.MinRating || d.Rating > reviews.MaxRating {
		return nil, nil, ErrRatingRange
	}

	in := ReviewInput{
		Place:    d.Place,
		Rating:   d.Rating,
		Note:     d.Note,
		Tags:     reviews.NormalizeTags([]string{d.Tags}),
		Photo:    d.Photo,
		City:     d.City,
		Coords:   d.Coords,
		ImageIDs: d.ImageIDs,
	}
	review, place, err := s.client.CreateReview(ctx, ident.Token, in)
	if err != nil {
		return nil, nil, err
	}

	s.cache.MergePlace(*place)
	s.cache.MergeReview(*review)
	*d = Draft{}
	return review, place, nil
}

// SavePlace creates or updates a place and merges it.
func (s *Session) SavePlace(ctx context.Context, in PlaceInput) (*places.Place, error) {
	ident := s.cache.Identity()
	if ident == nil {
		return nil, ErrAuthRequired
	}
	place, err := s.client.SavePlace(ctx, ident.Token, in)
	if err != nil {
		return nil, err
	}
	s.cache.MergePlace(*place)
	return place, nil
}

func (s *Session) token() string {
	if ident := s.cache.Identity(); ident != nil {
		return ident.Token
	}
	return ""
}

func statusText(err error) string {
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrAuthRequired):
		return "Sign in to vote."
	case errors.Is(err, ErrNotFound):
		return "This review no longer exists."
	case errors.Is(err, ErrTransient):
		return "Could not reach the server. Try again."
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return "The vote could not be saved. Try again."
	}
}
