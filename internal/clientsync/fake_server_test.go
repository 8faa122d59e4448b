package clientsync

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"luggo/internal/domain/places"
	"luggo/internal/domain/reviews"
	"luggo/internal/domain/storage"
	"luggo/internal/domain/votes"
	"luggo/internal/memstore"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

// fakeServer speaks the /v1 wire format on top of the in-memory store.
// Bearer tokens are "token-<uid>".
type fakeServer struct {
	*httptest.Server
	store    *storage.Container
	requests atomic.Int64
	votes    atomic.Int64
	fail     atomic.Bool
	// gated holds vote handlers until voteGate is closed.
	gated       atomic.Bool
	voteGate    chan struct{}
	voteEntered chan struct{}
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{
		store:       memstore.New(),
		voteGate:    make(chan struct{}),
		voteEntered: make(chan struct{}, 8),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/places", fs.listPlaces)
	mux.HandleFunc("POST /v1/places", fs.savePlace)
	mux.HandleFunc("GET /v1/reviews", fs.listReviews)
	mux.HandleFunc("POST /v1/reviews", fs.createReview)
	mux.HandleFunc("POST /v1/reviews/{id}/vote", fs.vote)
	mux.HandleFunc("POST /v1/auth/session", fs.session)

	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.requests.Add(1)
		if fs.fail.Load() {
			writeFake(w, http.StatusServiceUnavailable, map[string]string{"error": "store_unavailable"})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) client() *APIClient {
	cfg := DefaultConfig(fs.URL)
	cfg.FailureThreshold = 100
	return NewAPIClient(cfg)
}

// seedReview stores a review authored by uid on a fresh place.
func (fs *fakeServer) seedReview(t *testing.T, uid, name string) *reviews.Review {
	t.Helper()
	created, err := fs.store.CreateReview(context.Background(),
		places.Candidate{Name: "Café Aurora", Address: "San Jose", Coords: &places.Coords{Lat: 9.93, Lng: -84.08}},
		reviews.Fields{Rating: 5, Note: "great"},
		reviews.Author{UID: uid, DisplayName: name},
	)
	require.NoError(t, err)
	return created.Review
}

func viewer(r *http.Request) string {
	return strings.TrimPrefix(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "), "token-")
}

func writeFake(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func requireAuth(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid := viewer(r)
	if uid == "" {
		writeFake(w, http.StatusUnauthorized, map[string]string{"error": "auth_required"})
		return "", false
	}
	return uid, true
}

func (fs *fakeServer) listPlaces(w http.ResponseWriter, r *http.Request) {
	list, _ := fs.store.Places.List(r.Context())
	writeFake(w, http.StatusOK, map[string]any{"places": list})
}

func (fs *fakeServer) savePlace(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAuth(w, r); !ok {
		return
	}
	var in PlaceInput
	json.NewDecoder(r.Body).Decode(&in)
	place, _, err := places.NewRegistry(fs.store.Places).ResolveOrCreate(r.Context(), places.Candidate{
		ID: in.ID, Name: in.Name, Address: in.Address, Coords: in.Coords, Photo: in.Photo,
	})
	if err != nil {
		writeFake(w, http.StatusBadRequest, map[string]string{"error": "missing_place", "message": err.Error()})
		return
	}
	writeFake(w, http.StatusCreated, map[string]any{"place": place})
}

func (fs *fakeServer) listReviews(w http.ResponseWriter, r *http.Request) {
	list, _ := fs.store.Reviews.List(r.Context(), viewer(r))
	writeFake(w, http.StatusOK, map[string]any{"reviews": list})
}

func (fs *fakeServer) createReview(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuth(w, r)
	if !ok {
		return
	}
	var in ReviewInput
	json.NewDecoder(r.Body).Decode(&in)
	created, err := fs.store.CreateReview(r.Context(),
		places.Candidate{ID: in.Place.ID, Name: in.Place.Name, Address: in.Place.Address, Coords: in.Place.Coords},
		reviews.Fields{Rating: in.Rating, Note: in.Note, Tags: in.Tags, Photo: in.Photo, City: in.City, Coords: in.Coords},
		reviews.Author{UID: uid, DisplayName: uid},
	)
	if err != nil {
		writeFake(w, http.StatusBadRequest, map[string]string{"error": "validation_failed", "message": err.Error()})
		return
	}
	writeFake(w, http.StatusCreated, map[string]any{"review": created.Review, "place": created.Place})
}

func (fs *fakeServer) vote(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuth(w, r)
	if !ok {
		return
	}
	fs.votes.Add(1)
	if fs.gated.Load() {
		fs.voteEntered <- struct{}{}
		<-fs.voteGate
	}

	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	var in struct {
		Value int `json:"value"`
	}
	json.NewDecoder(r.Body).Decode(&in)

	tally, _, err := fs.store.Votes.Cast(r.Context(), id, uid, votes.Value(in.Value))
	switch {
	case errors.Is(err, votes.ErrReviewNotFound):
		writeFake(w, http.StatusNotFound, map[string]string{"error": "not_found"})
	case err != nil:
		writeFake(w, http.StatusBadRequest, map[string]string{"error": "invalid_vote", "message": err.Error()})
	default:
		writeFake(w, http.StatusOK, tally)
	}
}

func (fs *fakeServer) session(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuth(w, r)
	if !ok {
		return
	}
	writeFake(w, http.StatusOK, map[string]any{"user": User{ID: uid, DisplayName: "User " + uid}})
}
