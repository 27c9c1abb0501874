// Package auth owns custody of the authenticated session: the durable
// record it is saved under, the login/signup calls that produce it, and the
// invariant that a partial session is never trusted.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store is the single writer of the durable session record. Bootstrap fails
// open: any malformed or partial record is purged and reported as absent,
// never as an error the caller has to handle.
type Store interface {
	Bootstrap() (Session, bool, error)
	Save(Session) error
	Clear() error
}

// tokenExpired decodes the JWT exp claim without verifying the signature.
// Verification is the server's job; the client only wants to avoid
// restoring a session it knows is already dead. Tokens that are not JWTs
// are kept as-is since the service may issue opaque tokens.
func tokenExpired(token string) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
