package main

import (
	"net/http"

	"luggo/internal/domain/places"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// Place ids are lowercase slugs: cafe-aurora, cafe-aurora-2.
	Validate.RegisterValidation("placeid", func(fl validator.FieldLevel) bool {
		return places.ValidID(fl.Field().String())
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// it parses body into Go struct.
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1_048_578 //1mb
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(data)
}

type errorEnvelope struct {
	Error   string `json:"error" example:"validation_failed"`
	Message string `json:"message,omitempty" example:"rating must be between 1 and 5"`
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) error {
	return writeJSON(w, status, &errorEnvelope{Error: code, Message: message})
}

func (app *application) jsonResponse(w http.ResponseWriter, status int, data any) error {
	return writeJSON(w, status, data)
}
