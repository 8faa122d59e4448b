package main

import (
	"errors"
	"net/http"

	"luggo/internal/domain/places"
	"luggo/internal/domain/reviews"
	"luggo/internal/metrics"
)

type CreateReviewPayload struct {
	Place    *PlacePayload   `json:"place"`
	Rating   int             `json:"rating"`
	Note     string          `json:"note" validate:"max=2000"`
	Tags     reviews.TagList `json:"tags" swaggertype:"array,string"`
	Photo    string          `json:"photo" validate:"max=2048"`
	City     string          `json:"city" validate:"max=200"`
	Coords   *CoordsPayload  `json:"coords"`
	ImageIDs []string        `json:"imageIds" validate:"max=20,dive,max=200"`
}

type ReviewsResponse struct {
	Reviews []reviews.Review `json:"reviews"`
}

type CreatedReviewResponse struct {
	Review *reviews.Review `json:"review"`
	Place  *places.Place   `json:"place"`
}

// listReviewsHandler godoc
//
//	@Summary		List reviews
//	@Description	Every review, newest first. With a bearer token each review carries the caller's myVote.
//	@Tags			reviews
//	@Produce		json
//	@Success		200	{object}	ReviewsResponse
//	@Failure		401	{object}	errorEnvelope
//	@Failure		500	{object}	errorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/reviews [get]
func (app *application) listReviewsHandler(w http.ResponseWriter, r *http.Request) {
	viewer := ""
	if ident := getIdentityFromContext(r); ident != nil {
		viewer = ident.UID
	}

	list, err := app.store.Reviews.List(r.Context(), viewer)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}
	if list == nil {
		list = []reviews.Review{}
	}

	app.jsonResponse(w, http.StatusOK, ReviewsResponse{Reviews: list})
}

// createReviewHandler godoc
//
//	@Summary		Create a review
//	@Description	Resolves or creates the place and stores the review in one unit of work. Counters start at zero.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateReviewPayload		true	"Review"
//	@Success		201		{object}	CreatedReviewResponse
//	@Failure		400		{object}	errorEnvelope
//	@Failure		401		{object}	errorEnvelope
//	@Failure		404		{object}	errorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/reviews [post]
func (app *application) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, "validation_failed", err)
		return
	}

	if payload.Place == nil {
		app.badRequestResponse(w, r, "missing_place", errors.New("place is required"))
		return
	}
	if payload.Rating < reviews.MinRating || payload.Rating > reviews.MaxRating {
		app.badRequestResponse(w, r, "invalid_rating", reviews.ErrInvalidRating)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, "validation_failed", err)
		return
	}

	ident := getIdentityFromContext(r)
	created, err := app.store.CreateReview(r.Context(),
		payload.Place.candidate(),
		reviews.Fields{
			Rating:   payload.Rating,
			Note:     payload.Note,
			Tags:     payload.Tags,
			Photo:    payload.Photo,
			City:     payload.City,
			Coords:   payload.Coords.toCoords(),
			ImageIDs: payload.ImageIDs,
		},
		reviews.Author{UID: ident.UID, DisplayName: ident.DisplayName},
	)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	metrics.RecordPlaceResolved(string(created.Outcome))
	metrics.RecordReviewCreated()
	app.logger.Infow("review created",
		"review_id", created.Review.ID,
		"place_id", created.Place.ID,
		"place_outcome", created.Outcome,
		"author", ident.UID,
	)

	app.jsonResponse(w, http.StatusCreated, CreatedReviewResponse{Review: created.Review, Place: created.Place})
}
