package domain

import (
	"time"

	"github.com/google/uuid"
)

// VehicleCategory is a class of vehicle a passenger can request (sedan, SUV,
// tempo traveller, ...). The per-km floor price anchors the initial quote:
// initialPrice = MinPricePerKm × distance × journeyDays.
type VehicleCategory struct {
	ID            uuid.UUID
	Name          string
	MinPricePerKm float64
	CreatedAt     time.Time
}
