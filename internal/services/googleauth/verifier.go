package googleauth

import (
	"context"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/voltmap/chargepoint/internal/auth"
	"github.com/voltmap/chargepoint/internal/models"
)

// Google signs ID tokens under either issuer form, depending on the client
// library that requested them.
var acceptedIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// Verifier validates Google ID tokens. Nothing in the token is trusted until
// the signature has been checked against Google's published keys; the
// audience must be this application's own client ID.
type Verifier struct {
	jwksManager *JWKSManager
	clientID    string
	jwksURL     string
}

// NewVerifier creates a Google ID token verifier
func NewVerifier(jwksManager *JWKSManager, clientID, jwksURL string) *Verifier {
	return &Verifier{
		jwksManager: jwksManager,
		clientID:    clientID,
		jwksURL:     jwksURL,
	}
}

// Verify checks a raw ID token's signature, audience, timing and issuer, and
// returns the verified claims. Signature, audience and timing failures all
// surface as auth.ErrTokenInvalid; a provider-unverified email surfaces as
// auth.ErrEmailNotVerified. These errors are terminal for the request: a
// forged or expired token does not become valid on retry.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*models.GoogleClaims, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("google client ID not configured")
	}

	keys, err := v.jwksManager.GetJWKS(ctx, v.jwksURL)
	if err != nil {
		// Key fetch failure (including timeout) means the signature cannot
		// be checked, so the token cannot be accepted.
		return nil, fmt.Errorf("%w: signing keys unavailable", auth.ErrTokenInvalid)
	}

	token, err := jwt.Parse([]byte(rawToken),
		jwt.WithKeySet(keys),
		jwt.WithValidate(true),
		jwt.WithAudience(v.clientID),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrTokenInvalid, err)
	}

	if !acceptedIssuers[token.Issuer()] {
		return nil, fmt.Errorf("%w: unexpected issuer", auth.ErrTokenInvalid)
	}

	claims := &models.GoogleClaims{
		Subject: token.Subject(),
	}

	if email, ok := token.Get("email"); ok {
		if emailStr, ok := email.(string); ok {
			claims.Email = emailStr
		}
	}
	if verified, ok := token.Get("email_verified"); ok {
		if verifiedBool, ok := verified.(bool); ok {
			claims.EmailVerified = verifiedBool
		}
	}
	if name, ok := token.Get("name"); ok {
		if nameStr, ok := name.(string); ok {
			claims.Name = nameStr
		}
	}
	if picture, ok := token.Get("picture"); ok {
		if pictureStr, ok := picture.(string); ok {
			claims.Picture = pictureStr
		}
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: missing subject or email claim", auth.ErrTokenInvalid)
	}

	if !claims.EmailVerified {
		return nil, auth.ErrEmailNotVerified
	}

	return claims, nil
}
