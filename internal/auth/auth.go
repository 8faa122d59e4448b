package auth

import (
	"errors"
	"time"
)

var ErrInvalidToken = errors.New("invalid bearer token")

// Identity is who a verified bearer credential speaks for. UID is the
// stable identity key.
type Identity struct {
	UID         string    `json:"uid"`
	DisplayName string    `json:"displayName"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type Authenticator interface {
	// Issue signs a token for uid that is valid for the authenticator's TTL.
	Issue(uid, displayName string) (string, time.Time, error)
	Verify(token string) (*Identity, error)
}
