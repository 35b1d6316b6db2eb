/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package events

import "sync"

// EventType enumerates event categories.
type EventType string

const (
	EventScanStarted    EventType = "scan.started"
	EventScanSkipped    EventType = "scan.skipped"
	EventScanCompleted  EventType = "scan.completed"
	EventScanFailed     EventType = "scan.failed"
	EventFiltersChanged EventType = "filters.changed"
)

// AllEvents lists every event type, for subscribers that want everything.
var AllEvents = []EventType{
	EventScanStarted,
	EventScanSkipped,
	EventScanCompleted,
	EventScanFailed,
	EventFiltersChanged,
}

// Payload generic event payload.
type Payload map[string]any

// Subscriber receives event payloads.
type Subscriber chan Payload

// Bus implements a simple in-process pubsub. Publishing never blocks: a
// subscriber that is not keeping up misses events.
type Bus struct {
	mu   sync.RWMutex
	subs map[EventType][]Subscriber
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType][]Subscriber)}
}

// Subscribe registers a subscriber for event type.
func (b *Bus) Subscribe(eventType EventType) Subscriber {
	ch := make(Subscriber, 32)
	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], ch)
	b.mu.Unlock()
	return ch
}

// SubscribeAll registers one channel for several event types. Each payload
// carries its type under the "event" key.
func (b *Bus) SubscribeAll(types ...EventType) Subscriber {
	ch := make(Subscriber, 64)
	b.mu.Lock()
	for _, t := range types {
		b.subs[t] = append(b.subs[t], ch)
	}
	b.mu.Unlock()
	return ch
}

// Publish sends payload to subscribers. A nil bus is a no-op.
func (b *Bus) Publish(eventType EventType, payload Payload) {
	if b == nil {
		return
	}
	msg := make(Payload, len(payload)+1)
	for k, v := range payload {
		msg[k] = v
	}
	msg["event"] = string(eventType)

	// Sends are non-blocking, so holding the read lock keeps Unsubscribe from
	// closing a channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs[eventType] {
		select {
		case sub <- msg:
		default:
		}
	}
}

// Unsubscribe removes the subscriber from every event type and closes it.
func (b *Bus) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for t, subs := range b.subs {
		kept := subs[:0]
		for _, candidate := range subs {
			if candidate != sub {
				kept = append(kept, candidate)
			}
		}
		b.subs[t] = kept
	}
	close(sub)
}
