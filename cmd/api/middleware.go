package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"luggo/internal/auth"
	"luggo/internal/domain/users"
	"luggo/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type identityKey string

const identityCtx identityKey = "identity"

func getIdentityFromContext(r *http.Request) *auth.Identity {
	ident, _ := r.Context().Value(identityCtx).(*auth.Identity)
	return ident
}

func (app *application) BasicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Basic" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is malformed"))
				return
			}

			decoded, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil {
				app.unauthorizedBasicErrorResponse(w, r, err)
				return
			}

			username := app.config.auth.basic.user
			pass := app.config.auth.basic.pass

			creds := strings.SplitN(string(decoded), ":", 2)
			if username == "" || len(creds) != 2 || creds[0] != username || creds[1] != pass {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("invalid credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token of an "Authorization: Bearer" header.
// ok is false when the header is absent.
func bearerToken(r *http.Request) (token string, ok bool, err error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false, nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", true, fmt.Errorf("authorization header is malformed")
	}
	return parts[1], true, nil
}

// authenticate verifies the bearer token and records the identity so that
// later display name changes follow the credential.
func (app *application) authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	ident, err := app.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	user := &users.User{UID: ident.UID, DisplayName: ident.DisplayName}
	if err := app.store.Users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("record identity: %w", err)
	}
	if ident.DisplayName == "" {
		ident.DisplayName = user.DisplayName
	}
	return ident, nil
}

// authFailure answers a failed authenticate. Only credential errors are a
// 401; store failures while recording the identity keep their own status.
func (app *application) authFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, auth.ErrInvalidToken) {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}
	app.domainErrorResponse(w, r, err)
}

func (app *application) AuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, present, err := bearerToken(r)
		if !present {
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("authorization header is missing"))
			return
		}
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}

		ident, err := app.authenticate(r.Context(), token)
		if err != nil {
			app.authFailure(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityCtx, ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthTokenMiddleware attaches the identity when a valid bearer
// token is sent. An absent header passes through anonymously; a bad one
// is still rejected so clients notice expired sessions.
func (app *application) OptionalAuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, present, err := bearerToken(r)
		if !present {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}

		ident, err := app.authenticate(r.Context(), token)
		if err != nil {
			app.authFailure(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityCtx, ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.rateLimiter.Enabled {
			if allow, retryAfter := app.rateLimiter.Allow(clientIP(r)); !allow {
				secs := int(math.Ceil(retryAfter.Seconds()))
				app.rateLimitExceededResponse(w, r, strconv.Itoa(secs))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP strips the ephemeral port so every connection from one host
// shares a window.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (app *application) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordHTTPRequest(r.Method, route, status, time.Since(start))
	})
}
