package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/ADRCoding/college-bites-delivery/internal/schedules"
	"github.com/ADRCoding/college-bites-delivery/pkg/db/models"
	"github.com/ADRCoding/college-bites-delivery/pkg/enums"
)

// CreateOrderRequest books units against a driver schedule.
type CreateOrderRequest struct {
	ScheduleID          uuid.UUID `json:"schedule_id" validate:"required"`
	Quantity            int       `json:"quantity" validate:"required,min=1"`
	Description         string    `json:"description" validate:"required"`
	SpecialInstructions *string   `json:"special_instructions,omitempty"`
}

// CreateOrderResponse returns the booked order and its payment handle.
type CreateOrderResponse struct {
	OrderID     uuid.UUID         `json:"order_id"`
	PaymentID   string            `json:"payment_id"`
	AmountCents int               `json:"amount_cents"`
	Status      enums.OrderStatus `json:"status"`
}

// ConfirmPaymentRequest commits the booking identified by the payment handle.
type ConfirmPaymentRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
}

// OrderDTO is the transport shape for an order.
type OrderDTO struct {
	ID                  uuid.UUID         `json:"id"`
	CustomerID          uuid.UUID         `json:"customer_id"`
	ScheduleID          uuid.UUID         `json:"schedule_id"`
	Quantity            int               `json:"quantity"`
	Description         string            `json:"description"`
	SpecialInstructions *string           `json:"special_instructions,omitempty"`
	PaymentID           string            `json:"payment_id"`
	Status              enums.OrderStatus `json:"status"`
	AmountCents         int               `json:"amount_cents"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// OrderDetailDTO joins an order with its schedule.
type OrderDetailDTO struct {
	OrderDTO
	Schedule *schedules.ScheduleDTO `json:"schedule,omitempty"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	return &OrderDTO{
		ID:                  o.ID,
		CustomerID:          o.CustomerID,
		ScheduleID:          o.ScheduleID,
		Quantity:            o.Quantity,
		Description:         o.Description,
		SpecialInstructions: o.SpecialInstructions,
		PaymentID:           o.PaymentID,
		Status:              o.Status,
		AmountCents:         o.AmountCents,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}
