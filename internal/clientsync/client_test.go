package clientsync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientErrorMapping(t *testing.T) {
	fs := newFakeServer(t)
	c := fs.client()
	ctx := context.Background()

	_, err := c.Vote(ctx, "", 1, 1)
	assert.ErrorIs(t, err, ErrAuthRequired)

	_, err = c.Vote(ctx, "token-u1", 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	r := fs.seedReview(t, "u2", "Beto")
	_, err = c.Vote(ctx, "token-u1", r.ID, 7)
	var apiErr *APIError
	if assert.ErrorAs(t, err, &apiErr) {
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Equal(t, "invalid_vote", apiErr.Code)
	}
	assert.Equal(t, "closed", c.BreakerState(), "client errors do not trip the breaker")
}

func TestClientBreakerOpens(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig(srv.URL)
	cfg.FailureThreshold = 2
	cfg.OpenTimeout = time.Minute
	c := NewAPIClient(cfg)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.ListPlaces(ctx)
		require.ErrorIs(t, err, ErrTransient)
	}
	assert.Equal(t, "open", c.BreakerState())

	_, err := c.ListPlaces(ctx)
	assert.ErrorIs(t, err, ErrTransient)
	assert.Equal(t, int64(2), hits.Load(), "open breaker fails fast")
}

func TestClientNetworkFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewAPIClient(DefaultConfig(url))
	_, err := c.ListReviews(context.Background(), "")
	assert.ErrorIs(t, err, ErrTransient)
}
