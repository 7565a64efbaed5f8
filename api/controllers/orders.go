package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ADRCoding/college-bites-delivery/api/middleware"
	"github.com/ADRCoding/college-bites-delivery/api/responses"
	"github.com/ADRCoding/college-bites-delivery/api/validators"
	"github.com/ADRCoding/college-bites-delivery/internal/booking"
	pkgerrors "github.com/ADRCoding/college-bites-delivery/pkg/errors"
	"github.com/ADRCoding/college-bites-delivery/pkg/logger"
)

// OrdersCreate books units against a schedule without committing capacity.
func OrdersCreate(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireBooking(w, r, svc, logg)
		if !ok {
			return
		}

		var body booking.CreateOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.CreateOrder(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

// PaymentsConfirm commits the capacity for a pending order.
func PaymentsConfirm(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireBooking(w, r, svc, logg)
		if !ok {
			return
		}

		var body booking.ConfirmPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.ConfirmPayment(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// OrdersList returns the customer's orders, newest first.
func OrdersList(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireBooking(w, r, svc, logg)
		if !ok {
			return
		}

		list, err := svc.ListForCustomer(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// OrdersDetail returns one order with its schedule; owner-only.
func OrdersDetail(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireBooking(w, r, svc, logg)
		if !ok {
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetOrder(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// OrdersCancel releases a pending order the customer no longer wants.
func OrdersCancel(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireBooking(w, r, svc, logg)
		if !ok {
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CancelOrder(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// DriverOrdersList returns orders on the driver's upcoming schedules.
func DriverOrdersList(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireBooking(w, r, svc, logg)
		if !ok {
			return
		}

		list, err := svc.ListForDriver(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// DriverOrderInTransit marks a confirmed order as picked up.
func DriverOrderInTransit(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return driverTransition(svc, logg, booking.Service.MarkInTransit)
}

// DriverOrderComplete marks an in-transit order as delivered.
func DriverOrderComplete(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return driverTransition(svc, logg, booking.Service.MarkCompleted)
}

func driverTransition(
	svc booking.Service,
	logg *logger.Logger,
	transition func(booking.Service, context.Context, booking.Actor, uuid.UUID) (*booking.OrderDTO, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireBooking(w, r, svc, logg)
		if !ok {
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := transition(svc, r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func requireBooking(w http.ResponseWriter, r *http.Request, svc booking.Service, logg *logger.Logger) (booking.Actor, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
		return booking.Actor{}, false
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity"))
		return booking.Actor{}, false
	}
	return actor, true
}
