package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/voltmap/chargepoint/internal/auth"
	"github.com/voltmap/chargepoint/internal/models"
	"github.com/voltmap/chargepoint/internal/services/identity"
	"go.uber.org/zap"
)

func newReconcilerForTest(users *fakeUserRepo) *identity.Reconciler {
	return identity.NewReconciler(users, zap.NewNop())
}

// seedPasswordUser stores a password-based account the way Register would
func seedPasswordUser(t *testing.T, users *fakeUserRepo, email, password string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         displayNameFromEmail(email),
		Role:         models.RoleUser,
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

// tokenFromResponse extracts data.token from a success envelope
func tokenFromResponse(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	env := decodeEnvelope(t, w)
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data %q: %v", env.Data, err)
	}
	if data.Token == "" {
		t.Fatalf("Expected a token in response, got %s", w.Body.String())
	}
	return data.Token
}
