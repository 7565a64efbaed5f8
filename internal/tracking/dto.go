package tracking

import (
	"time"

	"github.com/google/uuid"

	"github.com/ADRCoding/college-bites-delivery/pkg/db/models"
)

// AppendLocationRequest is a driver's position report for an order.
type AppendLocationRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Note      *string  `json:"note,omitempty"`
}

// LocationUpdateDTO is the transport shape for one position report.
type LocationUpdateDTO struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func FromModel(u *models.LocationUpdate) *LocationUpdateDTO {
	if u == nil {
		return nil
	}
	return &LocationUpdateDTO{
		ID:        u.ID,
		OrderID:   u.OrderID,
		Latitude:  u.Latitude,
		Longitude: u.Longitude,
		Note:      u.Note,
		CreatedAt: u.CreatedAt,
	}
}
