package auth

import "errors"

// Sentinel errors for the identity subsystem. Handlers map these to HTTP
// status codes; anything not in this taxonomy is treated as an internal error
// and never leaks detail to the client.
var (
	// ErrDuplicateEmail is returned when registering an email that already
	// has an account.
	ErrDuplicateEmail = errors.New("an account with this email already exists")

	// ErrInvalidCredentials is returned for both unknown-email and
	// wrong-password failures. The two cases are deliberately
	// indistinguishable to prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTokenInvalid covers malformed tokens, bad signatures, bad audience
	// and timing failures on externally issued tokens.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned when a session token is past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrMissingToken is returned when a protected request carries no
	// bearer token.
	ErrMissingToken = errors.New("missing authorization token")

	// ErrEmailNotVerified is returned when the identity provider reports
	// the account's email as unverified.
	ErrEmailNotVerified = errors.New("email not verified by provider")

	// ErrUserNotFound is returned by lookups that found no matching account.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateGoogleID is returned when an insert collides with an
	// existing Google subject ID.
	ErrDuplicateGoogleID = errors.New("google account already linked to another user")
)
