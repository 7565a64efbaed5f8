package models

import (
	"time"

	"github.com/google/uuid"
)

// LocationUpdate is one append-only position report for an order in transit.
type LocationUpdate struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	Latitude  *float64  `gorm:"column:latitude"`
	Longitude *float64  `gorm:"column:longitude"`
	Note      *string   `gorm:"column:note"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
