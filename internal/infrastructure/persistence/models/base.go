package models

import (
	"time"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Row holds the identity and timestamp columns every table has
type Row struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate fills in a missing ID
func (r *Row) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r Row) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func rowOf(e shared.BaseEntity) Row {
	return Row{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

// RootRow is the row of a document aggregate; Version backs optimistic locking
type RootRow struct {
	Row
	Version int `gorm:"not null;default:1"`
}

func (r RootRow) root() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: r.entity(), Version: r.Version}
}

func rootRowOf(a shared.BaseAggregateRoot) RootRow {
	return RootRow{Row: rowOf(a.BaseEntity), Version: a.Version}
}
