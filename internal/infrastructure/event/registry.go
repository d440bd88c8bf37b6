package event

import (
	"slices"
	"sync"

	"github.com/bizdocs/backend/internal/domain/shared"
)

// subscription is one handler and the event types it listens to; no types
// means every event
type subscription struct {
	handler shared.EventHandler
	types   []string
}

func (s subscription) wildcard() bool { return len(s.types) == 0 }

// HandlerRegistry keeps subscriptions in registration order
type HandlerRegistry struct {
	mu   sync.RWMutex
	subs []subscription
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{}
}

// Register subscribes handler to eventTypes, or to every event when none are
// given. Types the handler already listens to are not added twice.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		if !slices.ContainsFunc(r.subs, func(s subscription) bool { return s.handler == handler && s.wildcard() }) {
			r.subs = append(r.subs, subscription{handler: handler})
		}
		return
	}
	i := slices.IndexFunc(r.subs, func(s subscription) bool { return s.handler == handler && !s.wildcard() })
	if i < 0 {
		r.subs = append(r.subs, subscription{handler: handler})
		i = len(r.subs) - 1
	}
	for _, t := range eventTypes {
		if !slices.Contains(r.subs[i].types, t) {
			r.subs[i].types = append(r.subs[i].types, t)
		}
	}
}

// Unregister drops every subscription of handler
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = slices.DeleteFunc(r.subs, func(s subscription) bool { return s.handler == handler })
}

// HandlersFor returns the handlers subscribed to eventType, then the
// wildcard handlers that are not already among them
func (r *HandlerRegistry) HandlersFor(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var typed, rest []shared.EventHandler
	for _, s := range r.subs {
		switch {
		case s.wildcard():
			rest = append(rest, s.handler)
		case slices.Contains(s.types, eventType):
			typed = append(typed, s.handler)
		}
	}
	for _, h := range rest {
		if !slices.Contains(typed, h) {
			typed = append(typed, h)
		}
	}
	return typed
}

// EventTypes lists, sorted, the event types with at least one typed handler
func (r *HandlerRegistry) EventTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var types []string
	for _, s := range r.subs {
		types = append(types, s.types...)
	}
	slices.Sort(types)
	return slices.Compact(types)
}
