package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/voltmap/chargepoint/internal/models"
)

// UserRepositoryInterface defines the interface for user repository
// operations. It enables fake implementations in handler and service tests.
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// StationRepositoryInterface defines the interface for station repository operations
type StationRepositoryInterface interface {
	Create(ctx context.Context, station *models.ChargingStation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ChargingStation, error)
	List(ctx context.Context) ([]*models.ChargingStation, error)
	Update(ctx context.Context, station *models.ChargingStation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Ensure concrete types implement the interfaces
var (
	_ UserRepositoryInterface    = (*UserRepository)(nil)
	_ StationRepositoryInterface = (*StationRepository)(nil)
)
