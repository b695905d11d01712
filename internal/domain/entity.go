package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entity provides the common identity, soft-delete and concurrency fields
// shared by all aggregates.
type Entity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	IsDeleted bool      `gorm:"index;default:false" json:"is_deleted"`
	Version   int       `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Aggregate is implemented by every persisted aggregate root.
type Aggregate interface {
	GetID() uuid.UUID
	GetVersion() int
	SetVersion(version int)
}

// NewEntity creates an entity base with a fresh identity.
func NewEntity() Entity {
	return Entity{
		ID:      uuid.New(),
		Version: 1,
	}
}

// GetID returns the aggregate identity.
func (e *Entity) GetID() uuid.UUID {
	return e.ID
}

// GetVersion returns the optimistic concurrency token.
func (e *Entity) GetVersion() int {
	return e.Version
}

// SetVersion replaces the optimistic concurrency token.
func (e *Entity) SetVersion(version int) {
	e.Version = version
}

// markDeleted flips the soft-delete flag. It reports whether the flag
// changed, so callers can keep Delete idempotent.
func (e *Entity) markDeleted() bool {
	if e.IsDeleted {
		return false
	}
	e.IsDeleted = true
	return true
}
