package ports

import (
	"context"

	"github.com/lumispa/booking-system/internal/core/domain"
)

// AuthGateway is the external authentication provider. It owns credential
// verification and account creation, and pushes identity-changed events in
// the order they occur.
type AuthGateway interface {
	// SignInWithPassword exchanges credentials for an identity. Failures are
	// domain.ErrInvalidCredentials, domain.ErrAccountNotFound or
	// domain.ErrInvalidEmail.
	SignInWithPassword(ctx context.Context, email, password string) (domain.Identity, error)

	// CreateAccount registers new credentials. Failures are
	// domain.ErrEmailInUse, domain.ErrWeakPassword or domain.ErrInvalidEmail.
	CreateAccount(ctx context.Context, email, password string) (domain.Identity, error)

	// SignOut revokes the current identity. Best effort: callers clear local
	// state regardless of the outcome.
	SignOut(ctx context.Context) error

	// Subscribe returns the identity-changed event stream and an unsubscribe
	// function the owner must call exactly once.
	Subscribe(ctx context.Context) (<-chan domain.IdentityEvent, func(), error)
}

// AccountRepository persists gateway credentials.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
}
