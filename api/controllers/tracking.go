package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ADRCoding/college-bites-delivery/api/middleware"
	"github.com/ADRCoding/college-bites-delivery/api/responses"
	"github.com/ADRCoding/college-bites-delivery/api/validators"
	"github.com/ADRCoding/college-bites-delivery/internal/tracking"
	pkgerrors "github.com/ADRCoding/college-bites-delivery/pkg/errors"
	"github.com/ADRCoding/college-bites-delivery/pkg/logger"
)

const trackKeepAlive = 25 * time.Second

// DriverOrderLocationAppend records a position report for an order.
func DriverOrderLocationAppend(svc tracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tracking service unavailable"))
			return
		}
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body tracking.AppendLocationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Append(r.Context(), actor, orderID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// OrderLocationUpdates returns an order's position reports, newest first.
func OrderLocationUpdates(svc tracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tracking service unavailable"))
			return
		}
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// OrderTrack streams an order's location feed over SSE: the stored history in
// chronological order first, then live updates from the broker.
func OrderTrack(svc tracking.Service, broker *tracking.Broker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || broker == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tracking service unavailable"))
			return
		}
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		// subscribe before the history read so nothing falls in the gap
		events, unsubscribe := broker.Subscribe(orderID)
		defer unsubscribe()

		// also enforces the caller's access to the order
		history, err := svc.ListChronological(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		for i := range history {
			writeSSEEvent(w, trackingEventFromDTO(&history[i]))
		}
		flusher.Flush()

		keepAlive := time.NewTicker(trackKeepAlive)
		defer keepAlive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case event, open := <-events:
				if !open {
					return
				}
				writeSSEEvent(w, event)
				flusher.Flush()
			case <-keepAlive.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				flusher.Flush()
			}
		}
	}
}

func trackingEventFromDTO(dto *tracking.LocationUpdateDTO) tracking.Event {
	return tracking.Event{
		OrderID:   dto.OrderID,
		Latitude:  dto.Latitude,
		Longitude: dto.Longitude,
		Note:      dto.Note,
		CreatedAt: dto.CreatedAt.Format(time.RFC3339Nano),
	}
}

func writeSSEEvent(w http.ResponseWriter, event tracking.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: location\ndata: %s\n\n", payload)
}
