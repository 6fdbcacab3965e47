package ports

import (
	"context"

	"github.com/lumispa/booking-system/internal/core/domain"
)

// SessionService is the session controller surface exposed to presentation
// layers.
type SessionService interface {
	// SignIn performs the credential round-trip and profile resolution.
	// The returned error, when non-nil, maps to a user-facing message via
	// domain.CredentialMessage.
	SignIn(ctx context.Context, email, password string) (domain.Session, error)

	// SignOut revokes remotely best-effort and clears local state
	// unconditionally.
	SignOut(ctx context.Context) error

	// CurrentSession returns the in-memory snapshot without blocking.
	CurrentSession() domain.Session

	// Subscribe delivers every state transition in the order it occurred.
	// The cancel function must be called exactly once.
	Subscribe() (<-chan domain.Session, func())
}

// RegistrationInput carries the fields collected by the registration form.
type RegistrationInput struct {
	FullName string
	Email    string
	Password string
	Phone    string
	Address  string
}

// RegistrationService creates accounts together with their profile documents.
type RegistrationService interface {
	Register(ctx context.Context, in RegistrationInput) (*domain.Profile, error)
}

// CatalogService is the live catalog view exposed to presentation layers.
type CatalogService interface {
	// Snapshot returns the most recently applied full snapshot.
	Snapshot() []domain.Service

	// Loading is true only until the first snapshot arrives.
	Loading() bool

	// Create validates and writes a new service. The local snapshot is not
	// mutated optimistically; the live query pushes the change back.
	Create(ctx context.Context, svc domain.Service) (string, error)

	// Update validates and writes the full mutated field set of an existing
	// service.
	Update(ctx context.Context, id string, svc domain.Service) error
}
