package models

import (
	"time"

	"github.com/google/uuid"
)

// StationStatus represents the operational state of a charging station
type StationStatus string

const (
	StationStatusActive   StationStatus = "Active"
	StationStatusInactive StationStatus = "Inactive"
)

// ChargingStation represents one charging station in the catalog
type ChargingStation struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Latitude      float64       `json:"lat"`
	Longitude     float64       `json:"lng"`
	Status        StationStatus `json:"status"`
	PowerKW       float64       `json:"power_kw"`
	ConnectorType string        `json:"connector_type"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
