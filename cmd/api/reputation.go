package main

import (
	"net/http"

	"luggo/internal/reputation"
)

type ReputationResponse struct {
	Authors []reputation.Standing `json:"authors"`
}

// reputationHandler godoc
//
//	@Summary		Author reputation
//	@Description	Karma (sum of up minus down over an author's reviews) and rank per author, recomputed from every review.
//	@Tags			reputation
//	@Produce		json
//	@Success		200	{object}	ReputationResponse
//	@Failure		500	{object}	errorEnvelope
//	@Router			/reputation [get]
func (app *application) reputationHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.store.Reviews.List(r.Context(), "")
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, ReputationResponse{Authors: reputation.Board(list)})
}
