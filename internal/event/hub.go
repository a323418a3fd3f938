package event

import (
	"fmt"
	"runtime/debug"
	"sync"

	log "github.com/sirupsen/logrus"
)

// All is the wildcard event name. A handler subscribed to All on a source
// receives every event emitted on that source.
const All = "all"

type Event struct {
	Source  string
	Name    string
	Payload any
}

type Handler func(Event)

type SubscriptionID uint64

type subscription struct {
	id       SubscriptionID
	listener string
	source   string
	name     string
	handler  Handler
}

// Hub is a synchronous publish/subscribe hub keyed by source and event name.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string][]subscription // source -> subscriptions in registration order
	nextID SubscriptionID
	logger log.FieldLogger
}

func NewHub(logger log.FieldLogger) *Hub {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Hub{
		subs:   make(map[string][]subscription),
		logger: logger,
	}
}

// Subscribe registers handler for name on source on behalf of listener.
// Identical registrations are kept and each fires once per emit.
func (h *Hub) Subscribe(listener, source, name string, handler Handler) SubscriptionID {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	h.subs[source] = append(h.subs[source], subscription{
		id:       h.nextID,
		listener: listener,
		source:   source,
		name:     name,
		handler:  handler,
	})
	return h.nextID
}

func (h *Hub) Unsubscribe(id SubscriptionID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for source, subs := range h.subs {
		for i, sub := range subs {
			if sub.id != id {
				continue
			}
			h.setSource(source, removeAt(subs, i))
			return true
		}
	}
	return false
}

// UnsubscribeAll removes every subscription registered by listener and
// returns how many were removed.
func (h *Hub) UnsubscribeAll(listener string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := 0
	for source, subs := range h.subs {
		kept := make([]subscription, 0, len(subs))
		for _, sub := range subs {
			if sub.listener == listener {
				removed++
				continue
			}
			kept = append(kept, sub)
		}
		h.setSource(source, kept)
	}
	return removed
}

// Emit calls, in subscription order, every handler registered for
// (source, name) and every wildcard handler on source. Handlers run on a
// snapshot, so they may emit, subscribe or unsubscribe while being called.
func (h *Hub) Emit(source, name string, payload any) {
	h.mu.RLock()
	targets := make([]subscription, 0, len(h.subs[source]))
	for _, sub := range h.subs[source] {
		if sub.name == name || sub.name == All {
			targets = append(targets, sub)
		}
	}
	h.mu.RUnlock()

	ev := Event{Source: source, Name: name, Payload: payload}
	for _, sub := range targets {
		h.safeCall(sub, ev)
	}
}

func (h *Hub) SubscriptionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, subs := range h.subs {
		count += len(subs)
	}
	return count
}

func (h *Hub) safeCall(sub subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.WithFields(log.Fields{
				"listener": sub.listener,
				"source":   ev.Source,
				"event":    ev.Name,
			}).Errorf("event handler panicked: %v\n%s", r, debug.Stack())
		}
	}()
	sub.handler(ev)
}

func (h *Hub) setSource(source string, subs []subscription) {
	if len(subs) == 0 {
		delete(h.subs, source)
		return
	}
	h.subs[source] = subs
}

// removeAt copies so that snapshots taken by Emit never observe the shift.
func removeAt(subs []subscription, i int) []subscription {
	out := make([]subscription, 0, len(subs)-1)
	out = append(out, subs[:i]...)
	return append(out, subs[i+1:]...)
}

func (e Event) String() string {
	return fmt.Sprintf("%s/%s", e.Source, e.Name)
}
