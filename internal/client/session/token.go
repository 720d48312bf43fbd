// Package session maintains the client's single current credential: decoding,
// expiry checks, persistence to scoped storage, and expiry-driven auto-logout.
//
// Decoding is intentionally unverified: the backend is the signing authority
// and re-validates every request. The client only inspects claims to shape
// behavior, so any decode failure simply resolves to "not authenticated".
package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/omnisent/omnisent/internal/client/models"
)

// ExpiryBuffer is subtracted from the token's expiration when deciding
// whether it is still usable, to avoid races with in-flight requests.
const ExpiryBuffer = 30 * time.Second

// timeNow is a test seam for the wall clock.
var timeNow = time.Now

// Claims is the decoded payload of the backend's bearer token.
type Claims struct {
	jwt.RegisteredClaims
	Role     models.Role `json:"role"`
	Username string      `json:"username"`
}

// UserID returns the subject claim.
func (c *Claims) UserID() string {
	return c.Subject
}

// WellFormed reports whether the token has the structural shape of a JWT:
// three dot-separated segments. Nothing beyond structure is checked.
func WellFormed(token string) bool {
	return token != "" && len(strings.Split(token, ".")) == 3
}

// Decode parses the middle segment as base64url JSON and returns the claims.
// Returns nil on any structural or parse error; it never panics and never
// surfaces an error to the caller.
func Decode(token string) *Claims {
	if !WellFormed(token) {
		return nil
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

// IsExpired reports whether the token is absent, undecodable, carries no
// expiration, or expires within ExpiryBuffer from now.
func IsExpired(token string) bool {
	claims := Decode(token)
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return !timeNow().Before(claims.ExpiresAt.Time.Add(-ExpiryBuffer))
}

// TimeRemaining returns how long until the token's expiration claim,
// clamped at zero. Absent or undecodable tokens have no time remaining.
func TimeRemaining(token string) time.Duration {
	claims := Decode(token)
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	remaining := claims.ExpiresAt.Time.Sub(timeNow())
	if remaining < 0 {
		return 0
	}
	return remaining
}
