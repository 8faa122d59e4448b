package session

import (
	"context"
	"errors"
	"fmt"

	"luggo/internal/auth"

	"go.uber.org/zap"
)

// Verifier checks bearer tokens, consulting the cache first when one is
// configured. A failing cache degrades to direct verification.
type Verifier struct {
	auth   auth.Authenticator
	store  *RedisStore
	logger *zap.SugaredLogger
}

func NewVerifier(a auth.Authenticator, store *RedisStore, logger *zap.SugaredLogger) *Verifier {
	return &Verifier{auth: a, store: store, logger: logger}
}

func (v *Verifier) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	if v.store != nil {
		ident, err := v.store.Lookup(ctx, token)
		switch {
		case err == nil:
			return ident, nil
		case errors.Is(err, ErrRevoked):
			return nil, fmt.Errorf("%w: %w", auth.ErrInvalidToken, err)
		case !errors.Is(err, ErrMiss):
			v.logger.Warnw("session cache lookup failed", "error", err.Error())
		}
	}

	ident, err := v.auth.Verify(token)
	if err != nil {
		return nil, err
	}

	if v.store != nil {
		if err := v.store.Save(ctx, token, ident); err != nil {
			v.logger.Warnw("session cache save failed", "error", err.Error())
		}
	}
	return ident, nil
}

// Revoke signs ident's token out. It reports false when no cache is
// configured, in which case the token stays valid until it expires.
func (v *Verifier) Revoke(ctx context.Context, token string, ident *auth.Identity) (bool, error) {
	if v.store == nil {
		return false, nil
	}
	if err := v.store.Revoke(ctx, token, ident.ExpiresAt); err != nil {
		return false, err
	}
	return true, nil
}
