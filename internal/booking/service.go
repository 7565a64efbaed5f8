package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ADRCoding/college-bites-delivery/internal/payments"
	"github.com/ADRCoding/college-bites-delivery/internal/schedules"
	"github.com/ADRCoding/college-bites-delivery/pkg/db/models"
	"github.com/ADRCoding/college-bites-delivery/pkg/enums"
	pkgerrors "github.com/ADRCoding/college-bites-delivery/pkg/errors"
	"github.com/ADRCoding/college-bites-delivery/pkg/outbox"
)

// Actor identifies the authenticated caller of a booking operation.
type Actor struct {
	ID   uuid.UUID
	Role enums.UserType
}

func (a Actor) ref() *outbox.ActorRef {
	return &outbox.ActorRef{UserID: a.ID, Role: string(a.Role)}
}

// Service defines the behavior needed by the order controllers.
type Service interface {
	CreateOrder(ctx context.Context, actor Actor, req CreateOrderRequest) (*CreateOrderResponse, error)
	ConfirmPayment(ctx context.Context, actor Actor, req ConfirmPaymentRequest) (*OrderDTO, error)
	CancelOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	MarkInTransit(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	MarkCompleted(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDetailDTO, error)
	ListForCustomer(ctx context.Context, actor Actor) ([]OrderDTO, error)
	ListForDriver(ctx context.Context, actor Actor) ([]OrderDetailDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	DB() *gorm.DB
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	runner  txRunner
	emitter outboxEmitter
	now     func() time.Time
}

// NewService constructs a booking service.
func NewService(runner txRunner, emitter outboxEmitter) (Service, error) {
	if runner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	return &service{runner: runner, emitter: emitter, now: time.Now}, nil
}

// orderEventPayload is the data section of order lifecycle events.
type orderEventPayload struct {
	OrderID    uuid.UUID         `json:"orderId"`
	ScheduleID uuid.UUID         `json:"scheduleId"`
	CustomerID uuid.UUID         `json:"customerId"`
	Quantity   int               `json:"quantity"`
	Status     enums.OrderStatus `json:"status"`
}

func (s *service) CreateOrder(ctx context.Context, actor Actor, req CreateOrderRequest) (*CreateOrderResponse, error) {
	if req.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}

	schedule, err := schedules.NewRepository(s.runner.DB()).FindByID(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "schedule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load schedule")
	}
	if req.Quantity > schedule.Capacity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity exceeds trip capacity of %d", schedule.Capacity))
	}
	if req.Quantity > schedule.AvailableCapacity {
		return nil, pkgerrors.New(pkgerrors.CodeCapacityExceeded,
			fmt.Sprintf("only %d units available", schedule.AvailableCapacity)).
			WithDetails(map[string]any{"available": schedule.AvailableCapacity})
	}

	amountCents, err := payments.QuoteAmountCents(req.Quantity)
	if err != nil {
		return nil, err
	}
	paymentID, err := payments.NewPaymentID(s.now())
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		CustomerID:          actor.ID,
		ScheduleID:          schedule.ID,
		Quantity:            req.Quantity,
		Description:         description,
		SpecialInstructions: req.SpecialInstructions,
		PaymentID:           paymentID,
		Status:              enums.OrderStatusPending,
		AmountCents:         amountCents,
	}
	if err := NewRepository(s.runner.DB()).CreateOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}

	return &CreateOrderResponse{
		OrderID:     order.ID,
		PaymentID:   order.PaymentID,
		AmountCents: order.AmountCents,
		Status:      order.Status,
	}, nil
}

func (s *service) ConfirmPayment(ctx context.Context, actor Actor, req ConfirmPaymentRequest) (*OrderDTO, error) {
	paymentID := strings.TrimSpace(req.PaymentID)
	if paymentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment_id is required")
	}

	var confirmed *models.Order
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		order, err := repo.FindOrderByPaymentID(ctx, paymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if order.CustomerID != actor.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order is %s, not pending", order.Status))
		}

		decremented, err := repo.DecrementScheduleCapacity(ctx, order.ScheduleID, order.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "commit capacity")
		}
		if !decremented {
			available := 0
			if schedule, err := schedules.NewRepository(tx).FindByID(ctx, order.ScheduleID); err == nil {
				available = schedule.AvailableCapacity
			}
			return pkgerrors.New(pkgerrors.CodeCapacityExceeded,
				fmt.Sprintf("only %d units available", available)).
				WithDetails(map[string]any{"available": available})
		}

		moved, err := repo.UpdateOrderStatusIf(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusConfirmed)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirm order")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer pending")
		}
		order.Status = enums.OrderStatusConfirmed

		if err := s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderConfirmed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor.ref(),
			Data: orderEventPayload{
				OrderID:    order.ID,
				ScheduleID: order.ScheduleID,
				CustomerID: order.CustomerID,
				Quantity:   order.Quantity,
				Status:     order.Status,
			},
			Version: 1,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue confirmation event")
		}

		confirmed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(confirmed), nil
}

func (s *service) CancelOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	var cancelled *models.Order
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		order, err := repo.FindOrderByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if order.CustomerID != actor.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("only pending orders can be cancelled, order is %s", order.Status))
		}

		moved, err := repo.UpdateOrderStatusIf(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusCancelled)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel order")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer pending")
		}
		order.Status = enums.OrderStatusCancelled

		if err := s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor.ref(),
			Data: orderEventPayload{
				OrderID:    order.ID,
				ScheduleID: order.ScheduleID,
				CustomerID: order.CustomerID,
				Quantity:   order.Quantity,
				Status:     order.Status,
			},
			Version: 1,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue cancellation event")
		}

		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(cancelled), nil
}

func (s *service) MarkInTransit(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	return s.driverTransition(ctx, actor, orderID,
		enums.OrderStatusConfirmed, enums.OrderStatusInTransit, enums.EventOrderInTransit)
}

func (s *service) MarkCompleted(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	return s.driverTransition(ctx, actor, orderID,
		enums.OrderStatusInTransit, enums.OrderStatusCompleted, enums.EventOrderCompleted)
}

// driverTransition moves an order along the delivery lifecycle on behalf of
// the driver who owns its schedule.
func (s *service) driverTransition(
	ctx context.Context,
	actor Actor,
	orderID uuid.UUID,
	from, to enums.OrderStatus,
	eventType enums.OutboxEventType,
) (*OrderDTO, error) {
	var updated *models.Order
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		order, err := repo.FindOrderByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}

		schedule, err := schedules.NewRepository(tx).FindByID(ctx, order.ScheduleID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load schedule")
		}
		if schedule.DriverID != actor.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order is not on one of your schedules")
		}
		if order.Status != from {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order is %s, expected %s", order.Status, from))
		}

		moved, err := repo.UpdateOrderStatusIf(ctx, order.ID, from, to)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order is no longer %s", from))
		}
		order.Status = to

		if err := s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor.ref(),
			Data: orderEventPayload{
				OrderID:    order.ID,
				ScheduleID: order.ScheduleID,
				CustomerID: order.CustomerID,
				Quantity:   order.Quantity,
				Status:     order.Status,
			},
			Version: 1,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue status event")
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDetailDTO, error) {
	order, err := NewRepository(s.runner.DB()).FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order.CustomerID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
	}

	detail := &OrderDetailDTO{OrderDTO: *FromModel(order)}
	schedule, err := schedules.NewRepository(s.runner.DB()).FindByID(ctx, order.ScheduleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load schedule")
	}
	detail.Schedule = schedules.FromModel(schedule)
	return detail, nil
}

func (s *service) ListForCustomer(ctx context.Context, actor Actor) ([]OrderDTO, error) {
	rows, err := NewRepository(s.runner.DB()).ListByCustomer(ctx, actor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) ListForDriver(ctx context.Context, actor Actor) ([]OrderDetailDTO, error) {
	fromDate := s.now().UTC().Format(schedules.DateLayout)
	rows, err := NewRepository(s.runner.DB()).ListByDriver(ctx, actor.ID, fromDate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list driver orders")
	}
	out := make([]OrderDetailDTO, 0, len(rows))
	for i := range rows {
		schedule := rows[i].Schedule
		out = append(out, OrderDetailDTO{
			OrderDTO: *FromModel(&rows[i].Order),
			Schedule: schedules.FromModel(&schedule),
		})
	}
	return out, nil
}
