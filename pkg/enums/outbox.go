package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column in outbox_events.
type OutboxAggregateType string

const (
	AggregateOrder    OutboxAggregateType = "order"
	AggregateSchedule OutboxAggregateType = "driver_schedule"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateSchedule,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column in outbox_events.
type OutboxEventType string

const (
	EventLocationUpdated OutboxEventType = "location_updated"
	EventOrderConfirmed  OutboxEventType = "order_confirmed"
	EventOrderCancelled  OutboxEventType = "order_cancelled"
	EventOrderInTransit  OutboxEventType = "order_in_transit"
	EventOrderCompleted  OutboxEventType = "order_completed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventLocationUpdated,
	EventOrderConfirmed,
	EventOrderCancelled,
	EventOrderInTransit,
	EventOrderCompleted,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
