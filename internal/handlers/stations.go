package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/voltmap/chargepoint/internal/database"
	"github.com/voltmap/chargepoint/internal/logger"
	"github.com/voltmap/chargepoint/internal/models"
	"github.com/voltmap/chargepoint/internal/request"
	"github.com/voltmap/chargepoint/internal/validation"
	"go.uber.org/zap"
)

// StationHandler handles charging station catalog requests. Reads are
// public; every mutation sits behind the auth middleware.
type StationHandler struct {
	stations database.StationRepositoryInterface
	log      *zap.Logger
}

// NewStationHandler creates a new station handler
func NewStationHandler(stations database.StationRepositoryInterface, log *zap.Logger) *StationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &StationHandler{stations: stations, log: log}
}

// RegisterPublicRoutes registers the unauthenticated read routes.
// The router should already have the /api/stations prefix.
func (h *StationHandler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListStations).Methods("GET")
	r.HandleFunc("/{id}", h.GetStation).Methods("GET")
}

// RegisterProtectedRoutes registers the mutating routes. The router must
// carry the auth middleware.
func (h *StationHandler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("", h.CreateStation).Methods("POST")
	r.HandleFunc("/{id}", h.UpdateStation).Methods("PUT")
	r.HandleFunc("/{id}", h.DeleteStation).Methods("DELETE")
}

// CreateStationRequest represents a create station request
type CreateStationRequest struct {
	Name          string  `json:"name" validate:"required,min=1,max=200"`
	Latitude      float64 `json:"lat" validate:"min=-90,max=90"`
	Longitude     float64 `json:"lng" validate:"min=-180,max=180"`
	Status        string  `json:"status" validate:"omitempty,station_status"`
	PowerKW       float64 `json:"power_kw" validate:"required,gt=0"`
	ConnectorType string  `json:"connector_type" validate:"required,min=1,max=50"`
}

// UpdateStationRequest represents a partial station update
type UpdateStationRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Latitude      *float64 `json:"lat,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude     *float64 `json:"lng,omitempty" validate:"omitempty,min=-180,max=180"`
	Status        *string  `json:"status,omitempty" validate:"omitempty,station_status"`
	PowerKW       *float64 `json:"power_kw,omitempty" validate:"omitempty,gt=0"`
	ConnectorType *string  `json:"connector_type,omitempty" validate:"omitempty,min=1,max=50"`
}

// ListStations lists all stations. Public.
func (h *StationHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	stations, err := h.stations.List(r.Context())
	if err != nil {
		h.log.Error("station_list_failed", zap.String("reason", logger.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to list stations")
		return
	}

	respondJSON(w, http.StatusOK, stations)
}

// GetStation returns a single station. Public.
func (h *StationHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	id, ok := stationID(w, r)
	if !ok {
		return
	}

	station, err := h.stations.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrStationNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Station not found")
			return
		}
		h.log.Error("station_get_failed", zap.String("reason", logger.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to get station")
		return
	}

	respondJSON(w, http.StatusOK, station)
}

// CreateStation adds a station to the catalog
func (h *StationHandler) CreateStation(w http.ResponseWriter, r *http.Request) {
	principal := request.PrincipalFromContext(r)
	if principal == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "No authenticated principal")
		return
	}

	var req CreateStationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid station data")
		return
	}

	status := models.StationStatus(req.Status)
	if status == "" {
		status = models.StationStatusActive
	}

	station := &models.ChargingStation{
		ID:            uuid.New(),
		Name:          validation.SanitizeText(req.Name),
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Status:        status,
		PowerKW:       req.PowerKW,
		ConnectorType: validation.SanitizeText(req.ConnectorType),
	}

	if err := h.stations.Create(r.Context(), station); err != nil {
		h.log.Error("station_create_failed", zap.String("reason", logger.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create station")
		return
	}

	h.log.Info("station_created",
		zap.String("station_id", station.ID.String()),
		zap.String("user_id", principal.UserID),
	)

	respondJSON(w, http.StatusCreated, station)
}

// UpdateStation applies a partial update to a station
func (h *StationHandler) UpdateStation(w http.ResponseWriter, r *http.Request) {
	id, ok := stationID(w, r)
	if !ok {
		return
	}

	var req UpdateStationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid station data")
		return
	}

	station, err := h.stations.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrStationNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Station not found")
			return
		}
		h.log.Error("station_get_failed", zap.String("reason", logger.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update station")
		return
	}

	if req.Name != nil {
		station.Name = validation.SanitizeText(*req.Name)
	}
	if req.Latitude != nil {
		station.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		station.Longitude = *req.Longitude
	}
	if req.Status != nil {
		station.Status = models.StationStatus(*req.Status)
	}
	if req.PowerKW != nil {
		station.PowerKW = *req.PowerKW
	}
	if req.ConnectorType != nil {
		station.ConnectorType = validation.SanitizeText(*req.ConnectorType)
	}

	if err := h.stations.Update(r.Context(), station); err != nil {
		if errors.Is(err, database.ErrStationNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Station not found")
			return
		}
		h.log.Error("station_update_failed", zap.String("reason", logger.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update station")
		return
	}

	respondJSON(w, http.StatusOK, station)
}

// DeleteStation removes a station from the catalog
func (h *StationHandler) DeleteStation(w http.ResponseWriter, r *http.Request) {
	id, ok := stationID(w, r)
	if !ok {
		return
	}

	if err := h.stations.Delete(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrStationNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Station not found")
			return
		}
		h.log.Error("station_delete_failed", zap.String("reason", logger.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete station")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Station deleted successfully",
	})
}

func stationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid station ID")
		return uuid.Nil, false
	}
	return id, true
}
