package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ADRCoding/college-bites-delivery/pkg/enums"
)

// Order is a customer's booking against a driver schedule.
type Order struct {
	ID                  uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID          uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	ScheduleID          uuid.UUID         `gorm:"column:schedule_id;type:uuid;not null;index"`
	Quantity            int               `gorm:"column:quantity;not null"`
	Description         string            `gorm:"column:description;not null"`
	SpecialInstructions *string           `gorm:"column:special_instructions"`
	PaymentID           string            `gorm:"column:payment_id;not null;uniqueIndex"`
	Status              enums.OrderStatus `gorm:"column:status;not null"`
	AmountCents         int               `gorm:"column:amount_cents;not null"`
	CreatedAt           time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
