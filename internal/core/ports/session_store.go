package ports

import (
	"context"

	"github.com/lumispa/booking-system/internal/core/domain"
)

// SessionStore is the durable single-slot cache for the persisted session
// record. It survives process restarts.
type SessionStore interface {
	// Load returns the stored record, or (nil, nil) when the slot is empty.
	Load(ctx context.Context) (*domain.PersistedSession, error)

	// Save writes the record, replacing any previous one.
	Save(ctx context.Context, rec domain.PersistedSession) error

	// Clear empties the slot. Clearing an empty slot is a no-op.
	Clear(ctx context.Context) error
}
