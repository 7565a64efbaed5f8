package models

import (
	"time"

	"github.com/google/uuid"
)

// DriverSchedule is a driver's planned trip with bookable capacity.
// AvailableCapacity only ever moves through the conditional decrement in
// the booking repository; it never exceeds Capacity and never drops below zero.
type DriverSchedule struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	DriverID          uuid.UUID `gorm:"column:driver_id;type:uuid;not null;index"`
	FromLocation      string    `gorm:"column:from_location;not null"`
	ToLocation        string    `gorm:"column:to_location;not null"`
	DepartureDate     string    `gorm:"column:departure_date;not null;index"`
	DepartureTime     string    `gorm:"column:departure_time;not null"`
	Capacity          int       `gorm:"column:capacity;not null"`
	AvailableCapacity int       `gorm:"column:available_capacity;not null"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
