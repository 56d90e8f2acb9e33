package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/voltmap/chargepoint/internal/auth"
	"github.com/voltmap/chargepoint/internal/database"
	"github.com/voltmap/chargepoint/internal/logger"
	"github.com/voltmap/chargepoint/internal/models"
	"github.com/voltmap/chargepoint/internal/request"
	"github.com/voltmap/chargepoint/internal/services/googleauth"
	"github.com/voltmap/chargepoint/internal/services/identity"
	"github.com/voltmap/chargepoint/internal/validation"
	"go.uber.org/zap"
)

// GoogleTokenVerifier verifies raw Google ID tokens. Satisfied by
// *googleauth.Verifier; faked in tests.
type GoogleTokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*models.GoogleClaims, error)
}

// AuthHandler handles registration, login and Google sign-in
type AuthHandler struct {
	users      database.UserRepositoryInterface
	issuer     *auth.TokenIssuer
	verifier   GoogleTokenVerifier
	reconciler *identity.Reconciler
	oauth      *googleauth.Client
	log        *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	users database.UserRepositoryInterface,
	issuer *auth.TokenIssuer,
	verifier GoogleTokenVerifier,
	reconciler *identity.Reconciler,
	oauth *googleauth.Client,
	log *zap.Logger,
) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{
		users:      users,
		issuer:     issuer,
		verifier:   verifier,
		reconciler: reconciler,
		oauth:      oauth,
		log:        log,
	}
}

// RegisterRoutes registers auth routes on the given router.
// The router should already have the /api/auth prefix.
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/google", h.GoogleSignIn).Methods("POST")
	r.HandleFunc("/google/signup", h.GoogleSignUp).Methods("POST")
	r.HandleFunc("/google/login", h.GetGoogleLogin).Methods("GET")
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents a password login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleSignInRequest carries the raw ID token issued by Google
type GoogleSignInRequest struct {
	Credential string `json:"credential" validate:"required"`
}

// userPayload is the client-facing shape of a user
type userPayload struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	PictureURL *string `json:"picture_url,omitempty"`
}

func toUserPayload(user *models.User) userPayload {
	return userPayload{
		ID:         user.ID.String(),
		Email:      user.Email,
		Name:       user.Name,
		PictureURL: user.PictureURL,
	}
}

// Register creates a password-based account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Email and a password of at least 6 characters are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.Error("password_hashing_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to register")
		return
	}

	email := database.NormalizeEmail(req.Email)
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         displayNameFromEmail(email),
		Role:         models.RoleUser,
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			respondJSONError(w, http.StatusBadRequest, "Duplicate Email", auth.ErrDuplicateEmail.Error())
			return
		}
		h.log.Error("user_creation_failed", zap.String("reason", logger.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to register")
		return
	}

	h.log.Info("user_registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", logger.SanitizeEmail(user.Email)),
	)

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
	})
}

// Login authenticates an email/password pair and returns a session token.
// Unknown email and wrong password produce the identical response so the
// endpoint cannot be used to probe for accounts.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Email and password are required")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondJSONError(w, http.StatusBadRequest, "Invalid Credentials", auth.ErrInvalidCredentials.Error())
			return
		}
		h.log.Error("user_lookup_failed", zap.String("reason", logger.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to log in")
		return
	}

	// A Google-only account has no password hash and fails here the same
	// way a wrong password does.
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		respondJSONError(w, http.StatusBadRequest, "Invalid Credentials", auth.ErrInvalidCredentials.Error())
		return
	}

	token, err := h.issuer.Issue(user, auth.PasswordTokenTTL)
	if err != nil {
		h.log.Error("token_issuance_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to log in")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
	})
}

// GoogleSignIn verifies a Google credential for an existing account. Unknown
// emails are rejected rather than auto-registered.
func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	h.googleAuth(w, r, identity.Options{AllowCreate: false})
}

// GoogleSignUp verifies a Google credential, creating an account for unknown
// emails and linking the Google identity to existing ones.
func (h *AuthHandler) GoogleSignUp(w http.ResponseWriter, r *http.Request) {
	h.googleAuth(w, r, identity.Options{AllowCreate: true})
}

func (h *AuthHandler) googleAuth(w http.ResponseWriter, r *http.Request, opts identity.Options) {
	var req GoogleSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Google credential is required")
		return
	}

	claims, err := h.verifier.Verify(r.Context(), req.Credential)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailNotVerified):
			respondJSONError(w, http.StatusBadRequest, "Email Not Verified", auth.ErrEmailNotVerified.Error())
		case errors.Is(err, auth.ErrTokenInvalid):
			respondJSONError(w, http.StatusBadRequest, "Invalid Token", auth.ErrTokenInvalid.Error())
		default:
			h.log.Error("google_verification_failed", zap.String("reason", logger.SanitizeError(err)))
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Google sign-in failed")
		}
		return
	}

	user, created, err := h.reconciler.Reconcile(r.Context(), claims, opts)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "No account for this email. Please register first.")
			return
		}
		h.log.Error("reconciliation_failed", zap.String("reason", logger.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Google sign-in failed")
		return
	}

	token, err := h.issuer.Issue(user, auth.GoogleTokenTTL)
	if err != nil {
		h.log.Error("token_issuance_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Google sign-in failed")
		return
	}

	status := http.StatusOK
	message := "Signed in successfully"
	if created {
		status = http.StatusCreated
		message = "Account created successfully"
	}

	respondJSON(w, status, map[string]any{
		"message": message,
		"token":   token,
		"user":    toUserPayload(user),
	})
}

// GetGoogleLogin returns the OAuth2 configuration for frontend-initiated sign-in
func (h *AuthHandler) GetGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Unavailable", "Google sign-in is not configured")
		return
	}
	respondJSON(w, http.StatusOK, h.oauth.LoginConfig())
}

// GetMe returns the account for the authenticated principal
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	principal := request.PrincipalFromContext(r)
	if principal == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "No authenticated principal")
		return
	}

	id, err := uuid.Parse(principal.UserID)
	if err != nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid token subject")
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Account no longer exists")
			return
		}
		h.log.Error("user_lookup_failed", zap.String("reason", logger.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load account")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func displayNameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
