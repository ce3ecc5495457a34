// Copyright 2025 Mike-CZ
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package event

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const EventQueueSize = 50

type EventType string

type EventSubscriberId int

type EventHandlerFunc func(Event)

// Event is the envelope delivered to subscribers. Payloads are the typed
// event structs declared next to each domain package and form part of the
// system's external contract: they carry exact ids, epochs, and amounts for
// downstream indexing.
type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
}

func NewEvent(eventType EventType, eventData any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      eventData,
	}
}

type subscriber struct {
	ch     chan Event
	closed bool
}

// EventBus delivers domain events to subscribers. It is audit-only: no
// engine component reads events back, so delivery never influences state
// transitions.
type EventBus struct {
	subscribers map[EventType]map[EventSubscriberId]*subscriber
	metrics     *busMetrics
	logger      *slog.Logger
	lastSubId   EventSubscriberId
	stopped     bool
	mu          sync.Mutex
}

type busMetrics struct {
	eventsPublished *prometheus.CounterVec
	subscribers     *prometheus.GaugeVec
}

func NewEventBus(
	promRegistry prometheus.Registerer,
	logger *slog.Logger,
) *EventBus {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e := &EventBus{
		subscribers: make(map[EventType]map[EventSubscriberId]*subscriber),
		logger:      logger,
	}
	if promRegistry != nil {
		promautoFactory := promauto.With(promRegistry)
		e.metrics = &busMetrics{
			eventsPublished: promautoFactory.NewCounterVec(
				prometheus.CounterOpts{
					Name: "gasmon_events_published_total",
					Help: "total events published per event type",
				},
				[]string{"type"},
			),
			subscribers: promautoFactory.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "gasmon_event_subscribers",
					Help: "current subscriber count per event type",
				},
				[]string{"type"},
			),
		}
	}
	return e
}

// Subscribe allows a consumer to receive events of a particular type via a
// channel.
func (e *EventBus) Subscribe(
	eventType EventType,
) (EventSubscriberId, <-chan Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sub := &subscriber{ch: make(chan Event, EventQueueSize)}
	e.lastSubId++
	subId := e.lastSubId
	if _, ok := e.subscribers[eventType]; !ok {
		e.subscribers[eventType] = make(
			map[EventSubscriberId]*subscriber,
		)
	}
	e.subscribers[eventType][subId] = sub
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType)).Inc()
	}
	return subId, sub.ch
}

// SubscribeFunc allows a consumer to receive events of a particular type via
// a callback function.
func (e *EventBus) SubscribeFunc(
	eventType EventType,
	handlerFunc EventHandlerFunc,
) EventSubscriberId {
	subId, evtCh := e.Subscribe(eventType)
	go func() {
		for evt := range evtCh {
			handlerFunc(evt)
		}
	}()
	return subId
}

// Unsubscribe stops delivery of events for a particular type for an existing
// subscriber.
func (e *EventBus) Unsubscribe(
	eventType EventType,
	subId EventSubscriberId,
) {
	e.mu.Lock()
	defer e.mu.Unlock()
	subs, ok := e.subscribers[eventType]
	if !ok {
		return
	}
	sub, ok := subs[subId]
	if !ok {
		return
	}
	delete(subs, subId)
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType)).Dec()
	}
}

// Publish allows a producer to send an event of a particular type to all
// subscribers. A subscriber with a full queue has the event dropped rather
// than blocking the publishing call.
func (e *EventBus) Publish(eventType EventType, evt Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	if e.metrics != nil {
		e.metrics.eventsPublished.WithLabelValues(string(eventType)).Inc()
	}
	for subId, sub := range e.subscribers[eventType] {
		select {
		case sub.ch <- evt:
		default:
			e.logger.Warn(
				"subscriber queue full, dropping event",
				"component", "eventbus",
				"type", eventType,
				"subscriber", subId,
			)
		}
	}
}

// Stop closes all subscriber channels and prevents further publishing
func (e *EventBus) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.stopped = true
	for eventType, subs := range e.subscribers {
		for _, sub := range subs {
			if !sub.closed {
				sub.closed = true
				close(sub.ch)
			}
		}
		delete(e.subscribers, eventType)
	}
}
