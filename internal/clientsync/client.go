// Package clientsync is the client side of the service: an HTTP API client,
// a local mirror of places and reviews, and a session that applies votes
// optimistically and reconciles them with the server.
package clientsync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"luggo/internal/domain/places"
	"luggo/internal/domain/reviews"
	"luggo/internal/domain/votes"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

var (
	ErrAuthRequired = errors.New("authentication required")
	ErrNotFound     = errors.New("not found")
	ErrTransient    = errors.New("server unavailable")
)

// APIError is an error response from the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Code)
	}
	return fmt.Sprintf("api error %d: %s: %s", e.Status, e.Code, e.Message)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	// Consecutive transient failures before the breaker opens.
	FailureThreshold uint32
	// How long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:          baseURL,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

type response struct {
	status int
	body   []byte
}

// APIClient talks to the /v1 HTTP surface. Client errors pass through the
// breaker as successes; only network failures and 5xx count against it.
type APIClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*response]
}

func NewAPIClient(cfg Config) *APIClient {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	return &APIClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
			Name:    "luggo-api",
			Timeout: cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		}),
	}
}

// BreakerState exposes the breaker state ("closed", "open", "half-open").
func (c *APIClient) BreakerState() string {
	return c.breaker.State().String()
}

type PlaceInput struct {
	ID      string         `json:"id,omitempty"`
	Name    string         `json:"name"`
	Address string         `json:"address,omitempty"`
	Photo   string         `json:"photo,omitempty"`
	Coords  *places.Coords `json:"coords,omitempty"`
}

type ReviewInput struct {
	Place    PlaceInput     `json:"place"`
	Rating   int            `json:"rating"`
	Note     string         `json:"note,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
	Photo    string         `json:"photo,omitempty"`
	City     string         `json:"city,omitempty"`
	Coords   *places.Coords `json:"coords,omitempty"`
	ImageIDs []string       `json:"imageIds,omitempty"`
}

type User struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName"`
}

type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

func (c *APIClient) ListPlaces(ctx context.Context) ([]places.Place, error) {
	var out struct {
		Places []places.Place `json:"places"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/places", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Places, nil
}

// ListReviews fills myVote when token is set.
func (c *APIClient) ListReviews(ctx context.Context, token string) ([]reviews.Review, error) {
	var out struct {
		Reviews []reviews.Review `json:"reviews"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/reviews", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Reviews, nil
}

func (c *APIClient) SavePlace(ctx context.Context, token string, in PlaceInput) (*places.Place, error) {
	var out struct {
		Place places.Place `json:"place"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/places", token, in, &out); err != nil {
		return nil, err
	}
	return &out.Place, nil
}

func (c *APIClient) CreateReview(ctx context.Context, token string, in ReviewInput) (*reviews.Review, *places.Place, error) {
	var out struct {
		Review reviews.Review `json:"review"`
		Place  places.Place   `json:"place"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/reviews", token, in, &out); err != nil {
		return nil, nil, err
	}
	return &out.Review, &out.Place, nil
}

func (c *APIClient) Vote(ctx context.Context, token string, reviewID int64, value votes.Value) (votes.Tally, error) {
	in := struct {
		Value int `json:"value"`
	}{Value: int(value)}

	var out votes.Tally
	path := "/v1/reviews/" + strconv.FormatInt(reviewID, 10) + "/vote"
	if err := c.do(ctx, http.MethodPost, path, token, in, &out); err != nil {
		return votes.Tally{}, err
	}
	return out, nil
}

// Session exchanges a bearer credential for the server's view of the user.
func (c *APIClient) Session(ctx context.Context, token string) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/auth/session", token, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *APIClient) Login(ctx context.Context, username, password string) (*Token, error) {
	in := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}

	var out Token
	if err := c.do(ctx, http.MethodPost, "/v1/auth/token", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	resp, err := c.breaker.Execute(func() (*response, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		res, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
		if err != nil {
			return nil, err
		}
		r := &response{status: res.StatusCode, body: body}
		if r.status >= 500 {
			return nil, decodeError(r)
		}
		return r, nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}

	switch {
	case resp.status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrAuthRequired, decodeError(resp))
	case resp.status == http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, decodeError(resp))
	case resp.status >= 400:
		return decodeError(resp)
	}

	if out == nil || len(resp.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(r *response) *APIError {
	apiErr := &APIError{}
	if err := json.Unmarshal(r.body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = http.StatusText(r.status)
	}
	apiErr.Status = r.status
	return apiErr
}
