package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"luggo/internal/domain/users"
	"luggo/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connReset stands in for a dropped database connection.
type connReset struct{}

func (connReset) Error() string     { return "conn reset by peer" }
func (connReset) SafeToRetry() bool { return true }

type downUsers struct {
	users.Store
}

func (downUsers) Upsert(context.Context, *users.User) error { return connReset{} }

func TestAuthStoreOutageIsUnavailable(t *testing.T) {
	ts := newTestServer(t)
	ts.app.store.Users = downUsers{Store: ts.app.store.Users}
	u1 := bearer(ts.token(t, "u1", "Ana"))

	tests := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/v1/reviews/1/vote", map[string]int{"value": 1}},
		{http.MethodPost, "/v1/auth/session", nil},
		{http.MethodGet, "/v1/reviews", nil},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := ts.do(t, tt.method, tt.path, u1, tt.body)
			assertError(t, rr, http.StatusServiceUnavailable, "store_unavailable")
			assert.Empty(t, rr.Header().Get("WWW-Authenticate"))
		})
	}

	rr := ts.do(t, http.MethodGet, "/v1/reviews", bearer("not-a-jwt"), nil)
	assertError(t, rr, http.StatusUnauthorized, "auth_required")
}

func TestRevokeSession(t *testing.T) {
	ts := newTestServer(t)
	s := miniredis.RunT(t)
	sessions, err := session.NewRedisStore("redis://"+s.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { sessions.Close() })
	ts.app.verifier = session.NewVerifier(ts.jwt, sessions, ts.app.logger)

	tok := bearer(ts.token(t, "u1", "Ana"))
	rr := ts.do(t, http.MethodPost, "/v1/auth/session", tok, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.do(t, http.MethodDelete, "/v1/auth/session", tok, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, decode[RevokeResponse](t, rr).Revoked)

	rr = ts.do(t, http.MethodPost, "/v1/auth/session", tok, nil)
	assertError(t, rr, http.StatusUnauthorized, "auth_required")
	rr = ts.do(t, http.MethodDelete, "/v1/auth/session", tok, nil)
	assertError(t, rr, http.StatusUnauthorized, "auth_required")

	rr = ts.do(t, http.MethodPost, "/v1/auth/session", bearer(ts.token(t, "u2", "Ben")), nil)
	assert.Equal(t, http.StatusOK, rr.Code, "other sessions stay valid")
}

func TestRevokeSessionWithoutCache(t *testing.T) {
	ts := newTestServer(t)
	tok := bearer(ts.token(t, "u1", "Ana"))

	rr := ts.do(t, http.MethodDelete, "/v1/auth/session", tok, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.False(t, decode[RevokeResponse](t, rr).Revoked)

	assertError(t, ts.do(t, http.MethodDelete, "/v1/auth/session", "", nil), http.StatusUnauthorized, "auth_required")
}

func TestRateLimiterKeysOnHost(t *testing.T) {
	ts := newTestServer(t)
	ts.app.config.rateLimiter.Enabled = true
	u1 := bearer(ts.token(t, "u1", "Ana"))

	post := func(remoteAddr string) *httptest.ResponseRecorder {
		body, err := json.Marshal(auroraPlace)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/v1/places", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", u1)
		req.RemoteAddr = remoteAddr
		rr := httptest.NewRecorder()
		ts.handler.ServeHTTP(rr, req)
		return rr
	}

	require.Equal(t, http.StatusCreated, post("203.0.113.7:40001").Code)
	require.Equal(t, http.StatusCreated, post("203.0.113.7:40002").Code)
	assertError(t, post("203.0.113.7:40003"), http.StatusTooManyRequests, "rate_limited")

	assert.Equal(t, http.StatusCreated, post("198.51.100.4:40001").Code, "other hosts keep their own window")
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remoteAddr, want string
	}{
		{"203.0.113.7:40001", "203.0.113.7"},
		{"[2001:db8::1]:8080", "2001:db8::1"},
		{"203.0.113.7", "203.0.113.7"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remoteAddr
		assert.Equal(t, tt.want, clientIP(req))
	}
}
