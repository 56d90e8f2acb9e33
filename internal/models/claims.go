package models

// GoogleClaims represents the verified claims extracted from a Google ID token.
// These are only ever produced after the token's signature has been checked
// against Google's published keys.
type GoogleClaims struct {
	Subject       string `json:"sub"`            // Google's stable subject ID for the account
	Email         string `json:"email"`          // User email
	EmailVerified bool   `json:"email_verified"` // Whether Google has verified the email
	Name          string `json:"name"`           // Display name
	Picture       string `json:"picture"`        // Profile picture URL
}

// Principal is the authenticated identity decoded from a session token and
// attached to the request context by the auth middleware. Session tokens are
// stateless, so the principal carries only what the token itself asserts.
type Principal struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
