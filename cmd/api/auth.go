package main

import (
	"errors"
	"net/http"
	"time"

	"luggo/internal/domain/users"
)

type CreateTokenPayload struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=72"`
}

type TokenResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *users.User `json:"user"`
}

type UserResponse struct {
	User *users.User `json:"user"`
}

type RevokeResponse struct {
	Revoked bool `json:"revoked"`
}

// sessionHandler godoc
//
//	@Summary		Exchange a bearer credential
//	@Description	Verifies the bearer token and returns the identity it belongs to.
//	@Tags			authentication
//	@Produce		json
//	@Success		200	{object}	UserResponse
//	@Failure		401	{object}	errorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/auth/session [post]
func (app *application) sessionHandler(w http.ResponseWriter, r *http.Request) {
	ident := getIdentityFromContext(r)

	user, err := app.store.Users.GetByUID(r.Context(), ident.UID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, UserResponse{User: user})
}

// revokeSessionHandler godoc
//
//	@Summary		Sign out
//	@Description	Revokes the bearer token for the rest of its lifetime. revoked is false when no session cache is configured.
//	@Tags			authentication
//	@Produce		json
//	@Success		200	{object}	RevokeResponse
//	@Failure		401	{object}	errorEnvelope
//	@Failure		503	{object}	errorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/auth/session [delete]
func (app *application) revokeSessionHandler(w http.ResponseWriter, r *http.Request) {
	token, _, err := bearerToken(r)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	revoked, err := app.verifier.Revoke(r.Context(), token, getIdentityFromContext(r))
	if err != nil {
		app.storeUnavailableResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, RevokeResponse{Revoked: revoked})
}

// createTokenHandler godoc
//
//	@Summary		Log in with a local account
//	@Description	Issues a bearer token for a username/password account.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateTokenPayload	true	"Credentials"
//	@Success		201		{object}	TokenResponse
//	@Failure		400		{object}	errorEnvelope
//	@Failure		401		{object}	errorEnvelope
//	@Router			/auth/token [post]
func (app *application) createTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, "validation_failed", err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, "validation_failed", err)
		return
	}

	user, err := app.store.Users.GetByUsername(r.Context(), payload.Username)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}
		app.domainErrorResponse(w, r, err)
		return
	}

	if err := user.Password.Compare(payload.Password); err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	token, exp, err := app.authenticator.Issue(user.UID, user.DisplayName)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, TokenResponse{Token: token, ExpiresAt: exp, User: user})
}
