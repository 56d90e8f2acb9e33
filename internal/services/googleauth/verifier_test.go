package googleauth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/voltmap/chargepoint/internal/auth"
)

const testClientID = "test-client.apps.googleusercontent.com"

// signingFixture is a private RSA key plus an httptest server publishing its
// public half as a JWKS document, standing in for Google's key endpoint.
type signingFixture struct {
	key    jwk.Key
	server *httptest.Server
}

func newSigningFixture(t *testing.T) *signingFixture {
	t.Helper()

	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}

	key, err := jwk.FromRaw(raw)
	if err != nil {
		t.Fatalf("failed to create JWK: %v", err)
	}
	if err := key.Set(jwk.KeyIDKey, "test-key-1"); err != nil {
		t.Fatalf("failed to set kid: %v", err)
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.RS256); err != nil {
		t.Fatalf("failed to set alg: %v", err)
	}

	pub, err := key.PublicKey()
	if err != nil {
		t.Fatalf("failed to derive public key: %v", err)
	}
	set := jwk.NewSet()
	if err := set.AddKey(pub); err != nil {
		t.Fatalf("failed to add key to set: %v", err)
	}

	body, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("failed to marshal JWKS: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(body); err != nil {
			t.Errorf("failed to write JWKS response: %v", err)
		}
	}))
	t.Cleanup(server.Close)

	return &signingFixture{key: key, server: server}
}

type tokenOpts struct {
	issuer        string
	audience      string
	email         string
	emailVerified bool
	expiresIn     time.Duration
}

func (f *signingFixture) signToken(t *testing.T, opts tokenOpts) string {
	t.Helper()

	now := time.Now()
	tok, err := jwt.NewBuilder().
		Issuer(opts.issuer).
		Audience([]string{opts.audience}).
		Subject("google-subject-123").
		Claim("email", opts.email).
		Claim("email_verified", opts.emailVerified).
		Claim("name", "Ada Lovelace").
		Claim("picture", "https://example.com/ada.png").
		IssuedAt(now).
		Expiration(now.Add(opts.expiresIn)).
		Build()
	if err != nil {
		t.Fatalf("failed to build token: %v", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, f.key))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	return string(signed)
}

func TestVerifier_Verify(t *testing.T) {
	t.Parallel()

	fixture := newSigningFixture(t)
	verifier := NewVerifier(NewJWKSManager(), testClientID, fixture.server.URL)

	raw := fixture.signToken(t, tokenOpts{
		issuer:        "https://accounts.google.com",
		audience:      testClientID,
		email:         "ada@example.com",
		emailVerified: true,
		expiresIn:     time.Hour,
	})

	claims, err := verifier.Verify(context.Background(), raw)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}

	if claims.Subject != "google-subject-123" {
		t.Errorf("Expected subject 'google-subject-123', got '%s'", claims.Subject)
	}
	if claims.Email != "ada@example.com" {
		t.Errorf("Expected email 'ada@example.com', got '%s'", claims.Email)
	}
	if claims.Name != "Ada Lovelace" {
		t.Errorf("Expected name 'Ada Lovelace', got '%s'", claims.Name)
	}
	if claims.Picture != "https://example.com/ada.png" {
		t.Errorf("Expected picture URL, got '%s'", claims.Picture)
	}
	if !claims.EmailVerified {
		t.Error("Expected EmailVerified to be true")
	}
}

func TestVerifier_BareIssuerAccepted(t *testing.T) {
	t.Parallel()

	fixture := newSigningFixture(t)
	verifier := NewVerifier(NewJWKSManager(), testClientID, fixture.server.URL)

	raw := fixture.signToken(t, tokenOpts{
		issuer:        "accounts.google.com",
		audience:      testClientID,
		email:         "ada@example.com",
		emailVerified: true,
		expiresIn:     time.Hour,
	})

	if _, err := verifier.Verify(context.Background(), raw); err != nil {
		t.Fatalf("Verify returned error for bare issuer form: %v", err)
	}
}

func TestVerifier_Rejections(t *testing.T) {
	t.Parallel()

	fixture := newSigningFixture(t)
	verifier := NewVerifier(NewJWKSManager(), testClientID, fixture.server.URL)

	tests := []struct {
		name    string
		opts    tokenOpts
		wantErr error
	}{
		{
			name: "wrong audience",
			opts: tokenOpts{
				issuer:        "https://accounts.google.com",
				audience:      "someone-else.apps.googleusercontent.com",
				email:         "ada@example.com",
				emailVerified: true,
				expiresIn:     time.Hour,
			},
			wantErr: auth.ErrTokenInvalid,
		},
		{
			name: "expired token",
			opts: tokenOpts{
				issuer:        "https://accounts.google.com",
				audience:      testClientID,
				email:         "ada@example.com",
				emailVerified: true,
				expiresIn:     -time.Hour,
			},
			wantErr: auth.ErrTokenInvalid,
		},
		{
			name: "unexpected issuer",
			opts: tokenOpts{
				issuer:        "https://evil.example.com",
				audience:      testClientID,
				email:         "ada@example.com",
				emailVerified: true,
				expiresIn:     time.Hour,
			},
			wantErr: auth.ErrTokenInvalid,
		},
		{
			name: "unverified email",
			opts: tokenOpts{
				issuer:        "https://accounts.google.com",
				audience:      testClientID,
				email:         "ada@example.com",
				emailVerified: false,
				expiresIn:     time.Hour,
			},
			wantErr: auth.ErrEmailNotVerified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw := fixture.signToken(t, tt.opts)
			_, err := verifier.Verify(context.Background(), raw)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestVerifier_ForgedToken(t *testing.T) {
	t.Parallel()

	// Token signed by a key that is NOT in the published set
	trusted := newSigningFixture(t)
	attacker := newSigningFixture(t)
	verifier := NewVerifier(NewJWKSManager(), testClientID, trusted.server.URL)

	raw := attacker.signToken(t, tokenOpts{
		issuer:        "https://accounts.google.com",
		audience:      testClientID,
		email:         "ada@example.com",
		emailVerified: true,
		expiresIn:     time.Hour,
	})

	_, err := verifier.Verify(context.Background(), raw)
	if !errors.Is(err, auth.ErrTokenInvalid) {
		t.Errorf("Expected ErrTokenInvalid for forged token, got %v", err)
	}
}

func TestVerifier_KeyEndpointUnavailable(t *testing.T) {
	t.Parallel()

	fixture := newSigningFixture(t)
	raw := fixture.signToken(t, tokenOpts{
		issuer:        "https://accounts.google.com",
		audience:      testClientID,
		email:         "ada@example.com",
		emailVerified: true,
		expiresIn:     time.Hour,
	})

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()
	verifier := NewVerifier(NewJWKSManager(), testClientID, dead.URL)

	_, err := verifier.Verify(context.Background(), raw)
	if !errors.Is(err, auth.ErrTokenInvalid) {
		t.Errorf("Expected ErrTokenInvalid when keys are unreachable, got %v", err)
	}
}

func TestVerifier_MissingClientID(t *testing.T) {
	t.Parallel()

	verifier := NewVerifier(NewJWKSManager(), "", "http://localhost:0")
	_, err := verifier.Verify(context.Background(), "whatever")
	if err == nil {
		t.Fatal("Expected error when client ID is not configured")
	}
	if errors.Is(err, auth.ErrTokenInvalid) {
		t.Error("Missing configuration should not map to a client-facing token error")
	}
}
