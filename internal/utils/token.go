package utils // package utils provides helpers for session ids and bearer tokens

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims holds the parts of a remote access token the portal looks at.
// The portal never verifies the signature (it does not hold the remote
// signing key); the remote API remains the authority and answers 401 for
// bad tokens.  The claims only drive rate-limit identity and early expiry.
type TokenClaims struct {
	UserID    string    // "user_id" claim, falling back to "sub"
	ExpiresAt time.Time // zero when the token carries no exp claim
}

// Expired reports whether the token's exp lies before now.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// InspectToken decodes the claims of a JWT without verifying it.
func InspectToken(raw string) (TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return TokenClaims{}, fmt.Errorf("inspect token: %w", err)
	}
	var out TokenClaims
	out.UserID = claimString(claims["user_id"])
	if out.UserID == "" {
		out.UserID = claimString(claims["sub"])
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// claimString accepts string and numeric ids; simplejwt emits integers.
func claimString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}

// HashSessionID returns the SHA‑256 hash of the raw session id as a hex
// string.  Only the hash is stored in the database so a leaked table does
// not yield usable cookies.
func HashSessionID(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
