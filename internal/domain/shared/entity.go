package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is the identity and timestamps shared by stored records
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity assigns a fresh id, created now
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// BaseAggregateRoot is embedded by quotations, invoices and receipts. It
// carries the optimistic version and the events raised since the last save.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	pending []DomainEvent
}

// NewBaseAggregateRoot starts a new aggregate at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// Record queues an event for publication after the aggregate is saved
func (a *BaseAggregateRoot) Record(e DomainEvent) {
	a.pending = append(a.pending, e)
}

// PendingEvents lists queued events without removing them
func (a *BaseAggregateRoot) PendingEvents() []DomainEvent {
	return a.pending
}

// TakeEvents returns the queued events and empties the queue
func (a *BaseAggregateRoot) TakeEvents() []DomainEvent {
	out := a.pending
	a.pending = nil
	return out
}
