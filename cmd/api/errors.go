package main

import (
	"errors"
	"net/http"

	"luggo/internal/domain/places"
	"luggo/internal/domain/reviews"
	"luggo/internal/domain/votes"

	"github.com/jackc/pgx/v5/pgconn"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusInternalServerError, "internal_error", "the server encountered a problem")
}

func (app *application) storeUnavailableResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("store unavailable", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusServiceUnavailable, "store_unavailable", "the data store is unavailable, try again")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, code string, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "code", code, "error", err.Error())

	writeJSONError(w, http.StatusBadRequest, code, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
}

func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	w.Header().Set("WWW-Authenticate", `Bearer realm="luggo"`)
	writeJSONError(w, http.StatusUnauthorized, "auth_required", "sign in to continue")
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
	writeJSONError(w, http.StatusUnauthorized, "auth_required", "unauthorized")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter string) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)

	w.Header().Set("Retry-After", retryAfter)
	writeJSONError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, retry after: "+retryAfter)
}

// domainErrorResponse maps errors returned by the stores onto the error
// taxonomy of the API.
func (app *application) domainErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reviews.ErrInvalidRating):
		app.badRequestResponse(w, r, "invalid_rating", err)
	case errors.Is(err, votes.ErrInvalidValue):
		app.badRequestResponse(w, r, "invalid_vote", err)
	case errors.Is(err, places.ErrNameRequired),
		errors.Is(err, places.ErrCoordsRequired),
		errors.Is(err, reviews.ErrPlaceRequired):
		app.badRequestResponse(w, r, "missing_place", err)
	case errors.Is(err, places.ErrInvalidID):
		app.badRequestResponse(w, r, "validation_failed", err)
	case errors.Is(err, places.ErrNotFound),
		errors.Is(err, reviews.ErrNotFound),
		errors.Is(err, votes.ErrReviewNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, votes.ErrVoterRequired):
		app.unauthorizedErrorResponse(w, r, err)
	case isStoreUnavailable(err):
		app.storeUnavailableResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}

// isStoreUnavailable reports connection level failures, as opposed to
// errors raised by a statement.
func isStoreUnavailable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return false
	}
	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr) || pgconn.SafeToRetry(err)
}
