package main

import (
	"errors"
	"net/http"
	"strconv"

	"luggo/internal/domain/votes"
	"luggo/internal/metrics"

	"github.com/go-chi/chi/v5"
)

type VotePayload struct {
	Value *int `json:"value" example:"1"`
}

// voteHandler godoc
//
//	@Summary		Cast, switch or clear a vote
//	@Description	value 1 or -1 records that polarity, 0 clears the caller's vote. Re-sending the recorded value changes nothing.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			reviewID	path		int			true	"Review ID"
//	@Param			payload		body		VotePayload	true	"Vote"
//	@Success		200			{object}	votes.Tally
//	@Failure		400			{object}	errorEnvelope
//	@Failure		401			{object}	errorEnvelope
//	@Failure		404			{object}	errorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/vote [post]
func (app *application) voteHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil || reviewID <= 0 {
		app.badRequestResponse(w, r, "validation_failed", errors.New("invalid review ID"))
		return
	}

	var payload VotePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, "invalid_vote", err)
		return
	}
	if payload.Value == nil {
		app.badRequestResponse(w, r, "invalid_vote", errors.New("value is required"))
		return
	}

	intent := votes.Value(*payload.Value)
	if !intent.Valid() {
		app.badRequestResponse(w, r, "invalid_vote", votes.ErrInvalidValue)
		return
	}

	ident := getIdentityFromContext(r)
	tally, transition, err := app.store.Votes.Cast(r.Context(), reviewID, ident.UID, intent)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	metrics.RecordVote(transition.Name())
	app.logger.Debugw("vote cast", "review_id", reviewID, "voter", ident.UID, "transition", transition.Name())

	app.jsonResponse(w, http.StatusOK, tally)
}
