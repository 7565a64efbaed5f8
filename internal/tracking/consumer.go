package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/ADRCoding/college-bites-delivery/pkg/enums"
	"github.com/ADRCoding/college-bites-delivery/pkg/logger"
	"github.com/ADRCoding/college-bites-delivery/pkg/outbox"
)

type subscriber interface {
	Receive(ctx context.Context, f func(context.Context, *gcppubsub.Message)) error
}

// Consumer tails the tracking subscription and fans location events out to
// the in-process broker for SSE delivery.
type Consumer struct {
	sub    subscriber
	broker *Broker
	logg   *logger.Logger
}

// NewConsumer constructs a tracking event consumer.
func NewConsumer(sub subscriber, broker *Broker, logg *logger.Logger) (*Consumer, error) {
	if sub == nil {
		return nil, errors.New("subscriber is required")
	}
	if broker == nil {
		return nil, errors.New("broker is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{sub: sub, broker: broker, logg: logg}, nil
}

// Run blocks receiving messages until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.sub.Receive(ctx, c.handle)
}

func (c *Consumer) handle(ctx context.Context, msg *gcppubsub.Message) {
	// other order lifecycle events share the topic; only location updates
	// feed the live trackers
	if msg.Attributes["event_type"] != string(enums.EventLocationUpdated) {
		msg.Ack()
		return
	}

	event, err := decodeLocationEvent(msg.Data)
	if err != nil {
		// malformed payloads never become valid; ack so they don't redeliver
		logCtx := c.logg.WithField(ctx, "message_id", msg.ID)
		logCtx = c.logg.WithField(logCtx, "error", err.Error())
		c.logg.Warn(logCtx, "dropping undecodable tracking event")
		msg.Ack()
		return
	}

	c.broker.Publish(event)
	msg.Ack()
}

func decodeLocationEvent(data []byte) (Event, error) {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Event{}, err
	}
	var payload LocationEventPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		return Event{}, err
	}
	return Event{
		OrderID:   payload.OrderID,
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
		Note:      payload.Note,
		CreatedAt: payload.CreatedAt.Format(time.RFC3339Nano),
	}, nil
}
