package engine

import (
	"reflect"

	"github.com/edwinsyarief/generational"
)

// MaxEventTypes defines the maximum number of unique event types that can be
// registered in the EventBus. This value is fixed at 256.
const MaxEventTypes = 256

// EventBus provides a simple, type-safe, synchronous event bus. Handlers are
// kept in one generational arena per event type; the Subscription returned
// by Subscribe is a handle into it.
type EventBus struct {
	eventTypeMap    map[reflect.Type]uint8
	handlers        [MaxEventTypes]generational.Vec[any]
	nextEventTypeID int
}

// Subscription identifies one registered handler.
type Subscription struct {
	eventType uint8
	id        generational.ID
}

// Subscribe registers a handler function to be called when an event of type
// T is published. Handlers are called in slot order, which is subscription
// order as long as nothing has been unsubscribed. A new handler may take the
// slot of one removed earlier.
//
// This operation may allocate memory the first time an event type is seen or
// when the handler arena grows. It panics once more than MaxEventTypes event
// types have been registered.
//
// Parameters:
//   - bus: The EventBus instance to subscribe to.
//   - handler: A function that takes a single argument of type T.
//
// Returns:
//   - A Subscription that can be passed to Unsubscribe.
func Subscribe[T any](bus *EventBus, handler func(T)) Subscription {
	t := reflect.TypeFor[T]()
	et := bus.getEventTypeID(t)
	return Subscription{eventType: et, id: bus.handlers[et].Insert(handler)}
}

// Unsubscribe removes a handler. It reports false if s was already removed.
func Unsubscribe(bus *EventBus, s Subscription) bool {
	_, ok := bus.handlers[s.eventType].Remove(s.id)
	return ok
}

// Publish broadcasts an event of type T to all registered handlers for that
// type. The handlers are called synchronously in slot order. Publishing an
// event type nobody subscribed to is a no-op.
//
// Parameters:
//   - bus: The EventBus instance to publish to.
//   - event: The event data of type T to be sent to handlers.
func Publish[T any](bus *EventBus, event T) {
	t := reflect.TypeFor[T]()
	if et, ok := bus.eventTypeMap[t]; ok {
		for h := range bus.handlers[et].Values() {
			h.(func(T))(event)
		}
	}
}

// getEventTypeID retrieves or assigns an id for the event type.
func (bus *EventBus) getEventTypeID(t reflect.Type) uint8 {
	if bus.eventTypeMap == nil {
		bus.eventTypeMap = make(map[reflect.Type]uint8)
	}
	if id, ok := bus.eventTypeMap[t]; ok {
		return id
	}
	if bus.nextEventTypeID >= MaxEventTypes {
		panic("engine: too many event types")
	}
	id := uint8(bus.nextEventTypeID)
	bus.nextEventTypeID++
	bus.eventTypeMap[t] = id
	return id
}
