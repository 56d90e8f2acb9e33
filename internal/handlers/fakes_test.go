package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/voltmap/chargepoint/internal/auth"
	"github.com/voltmap/chargepoint/internal/database"
	"github.com/voltmap/chargepoint/internal/models"
)

// fakeUserRepo is an in-memory user store keyed by normalized email
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
	err   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	key := database.NormalizeEmail(user.Email)
	if _, exists := f.users[key]; exists {
		return auth.ErrDuplicateEmail
	}
	cp := *user
	f.users[key] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[database.NormalizeEmail(email)]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	cp := *user
	f.users[database.NormalizeEmail(user.Email)] = &cp
	return nil
}

// fakeStationRepo is an in-memory station store that records how many
// mutations reached it
type fakeStationRepo struct {
	mu        sync.Mutex
	stations  map[uuid.UUID]*models.ChargingStation
	mutations int
	err       error
}

func newFakeStationRepo() *fakeStationRepo {
	return &fakeStationRepo{stations: make(map[uuid.UUID]*models.ChargingStation)}
}

func (f *fakeStationRepo) Create(ctx context.Context, station *models.ChargingStation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations++
	if f.err != nil {
		return f.err
	}
	cp := *station
	f.stations[station.ID] = &cp
	return nil
}

func (f *fakeStationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ChargingStation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.stations[id]
	if !ok {
		return nil, database.ErrStationNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStationRepo) List(ctx context.Context) ([]*models.ChargingStation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.ChargingStation, 0, len(f.stations))
	for _, s := range f.stations {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStationRepo) Update(ctx context.Context, station *models.ChargingStation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations++
	if f.err != nil {
		return f.err
	}
	if _, ok := f.stations[station.ID]; !ok {
		return database.ErrStationNotFound
	}
	cp := *station
	f.stations[station.ID] = &cp
	return nil
}

func (f *fakeStationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations++
	if f.err != nil {
		return f.err
	}
	if _, ok := f.stations[id]; !ok {
		return database.ErrStationNotFound
	}
	delete(f.stations, id)
	return nil
}

func (f *fakeStationRepo) mutationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mutations
}

// fakeVerifier returns canned claims or a canned error for any credential
type fakeVerifier struct {
	claims *models.GoogleClaims
	err    error
}

func (f *fakeVerifier) Verify(ctx context.Context, rawToken string) (*models.GoogleClaims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

// envelope mirrors the wire format of respondJSON / respondJSONError
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response body %q: %v", w.Body.String(), err)
	}
	return env
}
