package main

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"luggo/internal/domain/storage"

	"github.com/go-chi/chi/v5"
)

type ResetPayload struct {
	SeedDefaults bool `json:"seedDefaults"`
}

type ResetResponse struct {
	Cleared storage.Cleared `json:"cleared"`
	Seeded  bool            `json:"seeded"`
}

// resetHandler godoc
//
//	@Summary		Reset data
//	@Description	Deletes every place, review and vote. Accounts are kept. Optionally re-seeds the default data.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ResetPayload	false	"Options"
//	@Success		200		{object}	ResetResponse
//	@Failure		401		{object}	errorEnvelope
//	@Router			/admin/reset [post]
func (app *application) resetHandler(w http.ResponseWriter, r *http.Request) {
	var payload ResetPayload
	if err := readJSON(w, r, &payload); err != nil && !errors.Is(err, io.EOF) {
		app.badRequestResponse(w, r, "validation_failed", err)
		return
	}

	cleared, err := app.store.Reset(r.Context())
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}
	app.logger.Infow("data reset", "reviews", cleared.Reviews, "places", cleared.Places, "votes", cleared.Votes)

	if payload.SeedDefaults {
		if _, err := storage.Seed(r.Context(), app.store, app.config.seed.account); err != nil {
			app.internalServerError(w, r, err)
			return
		}
	}

	app.jsonResponse(w, http.StatusOK, ResetResponse{Cleared: cleared, Seeded: payload.SeedDefaults})
}

// recountHandler godoc
//
//	@Summary		Recount votes
//	@Description	Rebuilds a review's up and down counters from its vote records.
//	@Tags			admin
//	@Produce		json
//	@Param			reviewID	path		int	true	"Review ID"
//	@Success		200			{object}	votes.Tally
//	@Failure		404			{object}	errorEnvelope
//	@Router			/admin/reviews/{reviewID}/recount [post]
func (app *application) recountHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil || reviewID <= 0 {
		app.badRequestResponse(w, r, "validation_failed", errors.New("invalid review ID"))
		return
	}

	tally, err := app.store.Votes.Recount(r.Context(), reviewID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, tally)
}
