package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what an access token says about its holder. The signature is
// not checked, so it is only fit for display.
type Identity struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

type accessClaims struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	jwt.RegisteredClaims
}

// Inspect decodes the claims of token.
func Inspect(token string) (*Identity, error) {
	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}

	id := &Identity{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Nickname: claims.Nickname,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// Expired reports whether the token had expired at now. Tokens without an
// expiry never do.
func (i *Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}
