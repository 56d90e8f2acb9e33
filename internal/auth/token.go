package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/voltmap/chargepoint/internal/models"
)

// Session token lifetimes per login path. Password logins get a short-lived
// token; Google sign-ins get a week, matching the provider's own session
// expectations.
const (
	PasswordTokenTTL = 1 * time.Hour
	GoogleTokenTTL   = 7 * 24 * time.Hour
)

// TokenIssuer mints and verifies HS256 session tokens. The signing secret is
// loaded once at startup and passed in explicitly; there is no global key
// state and no server-side session store. A token is valid iff its signature
// checks out and it has not expired.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer creates a token issuer with the given signing secret.
func NewTokenIssuer(secret []byte) *TokenIssuer {
	return &TokenIssuer{secret: secret}
}

// Issue produces a signed session token for the user with the given lifetime.
func (i *TokenIssuer) Issue(user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()

	tok, err := jwt.NewBuilder().
		Subject(user.ID.String()).
		Claim("email", user.Email).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, i.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

// Verify parses and validates a session token and returns the principal it
// asserts. Expiry is reported as ErrTokenExpired; every other failure
// (malformed structure, bad signature) is ErrTokenInvalid.
func (i *TokenIssuer) Verify(raw string) (*models.Principal, error) {
	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, i.secret),
		jwt.WithValidate(true),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	principal := &models.Principal{UserID: tok.Subject()}
	if email, ok := tok.Get("email"); ok {
		if emailStr, ok := email.(string); ok {
			principal.Email = emailStr
		}
	}

	if principal.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return principal, nil
}
