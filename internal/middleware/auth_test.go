package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/voltmap/chargepoint/internal/auth"
	"github.com/voltmap/chargepoint/internal/models"
	"github.com/voltmap/chargepoint/internal/request"
	"go.uber.org/zap"
)

// spyHandler records whether the downstream handler ran and what principal
// it saw. The guard's contract is that it never runs on a failed request.
type spyHandler struct {
	called    bool
	principal *models.Principal
}

func (s *spyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.called = true
	s.principal = request.PrincipalFromContext(r)
	w.WriteHeader(http.StatusOK)
}

func TestAuth_RejectsWithoutReachingHandler(t *testing.T) {
	t.Parallel()

	issuer := auth.NewTokenIssuer([]byte("guard-test-secret"))
	otherIssuer := auth.NewTokenIssuer([]byte("some-other-secret"))
	user := &models.User{ID: uuid.New(), Email: "a@x.com"}

	expired, err := issuer.Issue(user, -time.Minute)
	if err != nil {
		t.Fatalf("failed to issue expired token: %v", err)
	}
	foreign, err := otherIssuer.Issue(user, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue foreign token: %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
	}{
		{
			name:       "no authorization header",
			authHeader: "",
		},
		{
			name:       "not a bearer scheme",
			authHeader: "Basic dXNlcjpwYXNz",
		},
		{
			name:       "bearer with no token",
			authHeader: "Bearer",
		},
		{
			name:       "malformed token",
			authHeader: "Bearer not.a.jwt",
		},
		{
			name:       "expired token",
			authHeader: "Bearer " + expired,
		},
		{
			name:       "token signed with wrong secret",
			authHeader: "Bearer " + foreign,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			spy := &spyHandler{}
			handler := Auth(issuer, zap.NewNop())(spy)

			r := httptest.NewRequest("POST", "/api/stations", nil)
			if tt.authHeader != "" {
				r.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d", w.Code)
			}
			if spy.called {
				t.Error("Downstream handler must not run for a rejected request")
			}
		})
	}
}

func TestAuth_ValidTokenAttachesPrincipal(t *testing.T) {
	t.Parallel()

	issuer := auth.NewTokenIssuer([]byte("guard-test-secret"))
	user := &models.User{ID: uuid.New(), Email: "a@x.com"}

	token, err := issuer.Issue(user, auth.PasswordTokenTTL)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	spy := &spyHandler{}
	handler := Auth(issuer, zap.NewNop())(spy)

	r := httptest.NewRequest("POST", "/api/stations", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !spy.called {
		t.Fatal("Expected downstream handler to run")
	}
	if spy.principal == nil {
		t.Fatal("Expected principal in request context")
	}
	if spy.principal.UserID != user.ID.String() {
		t.Errorf("Expected principal user ID %s, got %s", user.ID, spy.principal.UserID)
	}
	if spy.principal.Email != "a@x.com" {
		t.Errorf("Expected principal email 'a@x.com', got %s", spy.principal.Email)
	}
}

func TestAuth_ExpiredTokenMessage(t *testing.T) {
	t.Parallel()

	issuer := auth.NewTokenIssuer([]byte("guard-test-secret"))
	user := &models.User{ID: uuid.New(), Email: "a@x.com"}

	expired, err := issuer.Issue(user, -time.Minute)
	if err != nil {
		t.Fatalf("failed to issue expired token: %v", err)
	}

	spy := &spyHandler{}
	handler := Auth(issuer, zap.NewNop())(spy)

	r := httptest.NewRequest("DELETE", "/api/stations/abc", nil)
	r.Header.Set("Authorization", "Bearer "+expired)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "token expired") {
		t.Errorf("Expected 'token expired' in response, got %s", body)
	}
}
