package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumispa/booking-system/internal/core/domain"
	"github.com/lumispa/booking-system/internal/core/ports"
)

const minPasswordLength = 6

// Gateway implements ports.AuthGateway on top of the accounts repository.
// It verifies credentials with bcrypt, mints uids, and pushes
// identity-changed events to subscribers in the order they occur — a sign-in
// or account creation emits identity-present, a sign-out emits
// identity-absent.
type Gateway struct {
	accounts ports.AccountRepository
	log      zerolog.Logger

	mu      sync.Mutex
	subs    map[uint64]chan domain.IdentityEvent
	nextSub uint64
}

func NewGateway(accounts ports.AccountRepository, log zerolog.Logger) *Gateway {
	return &Gateway{
		accounts: accounts,
		log:      log,
		subs:     make(map[uint64]chan domain.IdentityEvent),
	}
}

func (g *Gateway) SignInWithPassword(ctx context.Context, email, password string) (domain.Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.Identity{}, err
	}

	acct, err := g.accounts.FindByEmail(ctx, email)
	if err != nil {
		return domain.Identity{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}

	id := domain.Identity{UID: acct.UID, Email: acct.Email}
	g.emit(domain.IdentityEvent{Identity: &id})
	return id, nil
}

func (g *Gateway) CreateAccount(ctx context.Context, email, password string) (domain.Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.Identity{}, err
	}
	if len(password) < minPasswordLength {
		return domain.Identity{}, domain.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Identity{}, err
	}

	acct := &domain.Account{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	created, err := g.accounts.Create(ctx, acct)
	if err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			return domain.Identity{}, domain.ErrEmailInUse
		}
		return domain.Identity{}, err
	}

	id := domain.Identity{UID: created.UID, Email: created.Email}
	g.log.Info().Str("email", id.Email).Str("uid", id.UID).Msg("account created")
	g.emit(domain.IdentityEvent{Identity: &id})
	return id, nil
}

// SignOut emits identity-absent. There is no remote token state to revoke
// here, so the call always succeeds; callers clear local state regardless.
func (g *Gateway) SignOut(_ context.Context) error {
	g.emit(domain.IdentityEvent{})
	return nil
}

// Subscribe registers an identity-event listener. The returned unsubscribe
// function must be called exactly once; it closes the channel.
func (g *Gateway) Subscribe(_ context.Context) (<-chan domain.IdentityEvent, func(), error) {
	ch := make(chan domain.IdentityEvent, 16)

	g.mu.Lock()
	g.nextSub++
	id := g.nextSub
	g.subs[id] = ch
	g.mu.Unlock()

	unsub := func() {
		g.mu.Lock()
		if c, ok := g.subs[id]; ok {
			delete(g.subs, id)
			close(c)
		}
		g.mu.Unlock()
	}
	return ch, unsub, nil
}

// emit delivers an event to every subscriber. Sends happen under the lock
// so concurrent emitters cannot interleave event order between subscribers;
// subscribers are expected to drain promptly.
func (g *Gateway) emit(ev domain.IdentityEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, ch := range g.subs {
		ch <- ev
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}
