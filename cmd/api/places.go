package main

import (
	"net/http"

	"luggo/internal/domain/places"
	"luggo/internal/metrics"
	"luggo/internal/params"
)

type CoordsPayload struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

func (c *CoordsPayload) toCoords() *places.Coords {
	if c == nil {
		return nil
	}
	return &places.Coords{Lat: c.Lat, Lng: c.Lng}
}

// PlacePayload identifies a place by id, or describes a new one.
type PlacePayload struct {
	ID      string         `json:"id,omitempty" validate:"omitempty,placeid"`
	Name    string         `json:"name" validate:"max=200"`
	Address string         `json:"address" validate:"max=300"`
	Photo   string         `json:"photo" validate:"max=2048"`
	Coords  *CoordsPayload `json:"coords"`
}

func (p PlacePayload) candidate() places.Candidate {
	return places.Candidate{
		ID:      p.ID,
		Name:    p.Name,
		Address: p.Address,
		Coords:  p.Coords.toCoords(),
		Photo:   p.Photo,
	}
}

type PlacesResponse struct {
	Places []places.Place `json:"places"`
}

type PlaceResponse struct {
	Place *places.Place `json:"place"`
}

// listPlacesHandler godoc
//
//	@Summary		List places
//	@Description	Every known place ordered by name.
//	@Tags			places
//	@Produce		json
//	@Success		200	{object}	PlacesResponse
//	@Failure		500	{object}	errorEnvelope
//	@Router			/places [get]
func (app *application) listPlacesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.store.Places.List(r.Context())
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}
	if list == nil {
		list = []places.Place{}
	}

	app.jsonResponse(w, http.StatusOK, PlacesResponse{Places: list})
}

// nearbyPlacesHandler godoc
//
//	@Summary		Nearby places
//	@Description	Places within radius meters of a point, nearest first, as GeoJSON.
//	@Tags			places
//	@Produce		json
//	@Param			lat		query		number	true	"Latitude"
//	@Param			lng		query		number	true	"Longitude"
//	@Param			radius	query		number	false	"Radius in meters"	default(3000)
//	@Param			limit	query		int		false	"Max features"		default(50)
//	@Success		200		{object}	places.GeoJSONFeatureCollection
//	@Failure		400		{object}	errorEnvelope
//	@Router			/places/nearby [get]
func (app *application) nearbyPlacesHandler(w http.ResponseWriter, r *http.Request) {
	q, err := params.ParseNearby(r.URL.Query())
	if err != nil {
		app.badRequestResponse(w, r, "validation_failed", err)
		return
	}

	all, err := app.store.Places.List(r.Context())
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, places.Nearby(all, places.Coords{Lat: q.Lat, Lng: q.Lng}, q.Radius, q.Limit))
}

// savePlaceHandler godoc
//
//	@Summary		Create or update a place
//	@Description	With an existing id the place is updated (last write wins). Otherwise a new place is created and its id derived from the name, with a numeric suffix on collision.
//	@Tags			places
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		PlacePayload	true	"Place"
//	@Success		201		{object}	PlaceResponse	"Created"
//	@Success		200		{object}	PlaceResponse	"Updated"
//	@Failure		400		{object}	errorEnvelope
//	@Failure		401		{object}	errorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/places [post]
func (app *application) savePlaceHandler(w http.ResponseWriter, r *http.Request) {
	var payload PlacePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, "validation_failed", err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, "validation_failed", err)
		return
	}

	place, outcome, err := places.NewRegistry(app.store.Places).ResolveOrCreate(r.Context(), payload.candidate())
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}
	metrics.RecordPlaceResolved(string(outcome))

	status := http.StatusCreated
	if outcome == places.OutcomeUpserted {
		status = http.StatusOK
	}
	app.jsonResponse(w, status, PlaceResponse{Place: place})
}
