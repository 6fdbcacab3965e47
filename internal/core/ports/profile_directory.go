package ports

import (
	"context"

	"github.com/lumispa/booking-system/internal/core/domain"
)

// ProfileDirectory maps a user identity to its profile document. Profiles
// are keyed by email.
type ProfileDirectory interface {
	// GetByEmail returns the profile for an email, or
	// domain.ErrProfileNotFound when no document exists.
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)

	// Put writes the full profile document under its email key, creating or
	// replacing it.
	Put(ctx context.Context, profile *domain.Profile) error
}
