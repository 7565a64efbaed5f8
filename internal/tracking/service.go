package tracking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ADRCoding/college-bites-delivery/internal/booking"
	"github.com/ADRCoding/college-bites-delivery/internal/schedules"
	"github.com/ADRCoding/college-bites-delivery/pkg/db/models"
	"github.com/ADRCoding/college-bites-delivery/pkg/enums"
	pkgerrors "github.com/ADRCoding/college-bites-delivery/pkg/errors"
	"github.com/ADRCoding/college-bites-delivery/pkg/outbox"
)

// Service defines the behavior needed by the tracking controllers.
type Service interface {
	Append(ctx context.Context, actor booking.Actor, orderID uuid.UUID, req AppendLocationRequest) (*LocationUpdateDTO, error)
	List(ctx context.Context, actor booking.Actor, orderID uuid.UUID) ([]LocationUpdateDTO, error)
	ListChronological(ctx context.Context, actor booking.Actor, orderID uuid.UUID) ([]LocationUpdateDTO, error)
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
}

// NewService constructs a tracking service.
func NewService(runner txRunner, emitter outboxEmitter) (Service, error) {
	if runner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	return &service{runner: runner, emitter: emitter}, nil
}

// LocationEventPayload is the data section of location_updated events.
type LocationEventPayload struct {
	OrderID   uuid.UUID `json:"orderId"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *service) Append(ctx context.Context, actor booking.Actor, orderID uuid.UUID, req AppendLocationRequest) (*LocationUpdateDTO, error) {
	if req.Latitude == nil && req.Longitude == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one of latitude or longitude is required")
	}
	if !finite(req.Latitude) || !finite(req.Longitude) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coordinates must be finite numbers")
	}

	var appended *models.LocationUpdate
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		order, schedule, err := loadOrderWithSchedule(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if schedule.DriverID != actor.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order is not on one of your schedules")
		}

		update := &models.LocationUpdate{
			OrderID:   order.ID,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Note:      req.Note,
			CreatedAt: time.Now().UTC(),
		}
		if err := NewRepository(tx).Append(ctx, update); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append location update")
		}

		if err := s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLocationUpdated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: actor.ID, Role: string(actor.Role)},
			Data: LocationEventPayload{
				OrderID:   update.OrderID,
				Latitude:  update.Latitude,
				Longitude: update.Longitude,
				Note:      update.Note,
				CreatedAt: update.CreatedAt,
			},
			Version: 1,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue location event")
		}

		appended = update
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(appended), nil
}

func (s *service) List(ctx context.Context, actor booking.Actor, orderID uuid.UUID) ([]LocationUpdateDTO, error) {
	return s.list(ctx, actor, orderID, (*Repository).ListByOrderDesc)
}

func (s *service) ListChronological(ctx context.Context, actor booking.Actor, orderID uuid.UUID) ([]LocationUpdateDTO, error) {
	return s.list(ctx, actor, orderID, (*Repository).ListByOrderAsc)
}

func (s *service) list(
	ctx context.Context,
	actor booking.Actor,
	orderID uuid.UUID,
	fetch func(*Repository, context.Context, uuid.UUID) ([]models.LocationUpdate, error),
) ([]LocationUpdateDTO, error) {
	order, schedule, err := loadOrderWithSchedule(ctx, s.runner.DB(), orderID)
	if err != nil {
		return nil, err
	}
	// the customer watches their delivery; the driver reviews their own trail
	if order.CustomerID != actor.ID && schedule.DriverID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
	}

	rows, err := fetch(NewRepository(s.runner.DB()), ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list location updates")
	}
	out := make([]LocationUpdateDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func loadOrderWithSchedule(ctx context.Context, db *gorm.DB, orderID uuid.UUID) (*models.Order, *models.DriverSchedule, error) {
	order, err := booking.NewRepository(db).FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	schedule, err := schedules.NewRepository(db).FindByID(ctx, order.ScheduleID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load schedule")
	}
	return order, schedule, nil
}

func finite(v *float64) bool {
	if v == nil {
		return true
	}
	return !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
