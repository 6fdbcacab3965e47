package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lumispa/booking-system/internal/core/domain"
	"github.com/lumispa/booking-system/internal/core/ports"
)

// SessionController owns the in-memory session state machine:
//
//	Unknown → Resolving → Authenticated(role) | Anonymous
//
// It drains the auth gateway's identity-changed stream in order, resolves
// the role via the profile directory, mirrors the result into the durable
// session store, and fans every transition out to subscribers in the order
// it occurred.
//
// Only one profile lookup result per identity-change event is ever applied:
// each event claims a fresh epoch, and a lookup whose epoch has been
// superseded by the time it completes is discarded. Recency is decided by
// event order, not completion order.
type SessionController struct {
	gateway  ports.AuthGateway
	profiles ports.ProfileDirectory
	store    ports.SessionStore
	log      zerolog.Logger

	mu      sync.Mutex
	cur     domain.Session
	epoch   uint64
	subs    map[uint64]*subscriber
	nextSub uint64

	unsubscribe func()
	pumpDone    chan struct{}
	closeOnce   sync.Once
}

// NewSessionController wires a controller. Call Start before use.
func NewSessionController(gateway ports.AuthGateway, profiles ports.ProfileDirectory, store ports.SessionStore, log zerolog.Logger) *SessionController {
	return &SessionController{
		gateway:  gateway,
		profiles: profiles,
		store:    store,
		log:      log,
		cur:      domain.Session{State: domain.StateUnknown, Loading: true},
		subs:     make(map[uint64]*subscriber),
	}
}

// Start subscribes to the gateway's identity events and, when a persisted
// session record exists, optimistically enters Resolving with the restored
// identity fields on the snapshot so callers can see them before the
// gateway round-trip completes.
func (c *SessionController) Start(ctx context.Context) error {
	events, unsub, err := c.gateway.Subscribe(ctx)
	if err != nil {
		return err
	}
	c.unsubscribe = unsub

	rec, err := c.store.Load(ctx)
	switch {
	case err != nil:
		c.log.Warn().Err(err).Msg("session store read failed, starting cold")
	case rec != nil:
		c.commit(0, domain.Session{
			State:   domain.StateResolving,
			UID:     rec.UID,
			Email:   rec.Email,
			Role:    rec.Role,
			Loading: true,
		})
	}

	c.pumpDone = make(chan struct{})
	go c.pump(ctx, events)
	return nil
}

// Close unsubscribes from the gateway and tears down all subscriber
// flushers. Safe to call once the pump has been started.
func (c *SessionController) Close() {
	c.closeOnce.Do(func() {
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
		if c.pumpDone != nil {
			<-c.pumpDone
		}
		c.mu.Lock()
		for id, sub := range c.subs {
			sub.stop()
			delete(c.subs, id)
		}
		c.mu.Unlock()
	})
}

// CurrentSession returns the in-memory snapshot. It never blocks; callers
// needing a resolved state await the next transition via Subscribe.
func (c *SessionController) CurrentSession() domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

// Subscribe registers a listener for session transitions. Every transition
// is delivered, in order; the cancel function must be called exactly once.
func (c *SessionController) Subscribe() (<-chan domain.Session, func()) {
	sub := newSubscriber()
	c.mu.Lock()
	c.nextSub++
	id := c.nextSub
	c.subs[id] = sub
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if s, ok := c.subs[id]; ok {
			delete(c.subs, id)
			s.stop()
		}
		c.mu.Unlock()
	}
	return sub.ch, cancel
}

// SignIn exchanges credentials via the gateway, resolves the profile for
// the authenticated identity, and transitions the state machine. On success
// the persisted session record is written. The error, when non-nil, maps to
// a user-facing message via domain.CredentialMessage.
func (c *SessionController) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	c.setLoading(true)

	id, err := c.gateway.SignInWithPassword(ctx, strings.TrimSpace(email), password)
	if err != nil {
		c.log.Info().Str("email", email).Err(err).Msg("credential exchange rejected")
		c.commit(0, anonymousSession())
		return c.CurrentSession(), err
	}

	epoch := c.claimEpoch()
	c.commit(epoch, resolvingSession(id))

	profile, err := c.profiles.GetByEmail(ctx, id.Email)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		// Authenticated identity without a profile document: treated as not
		// fully registered, not as a hard error.
		c.log.Info().Str("email", id.Email).Msg("no profile document for authenticated identity")
		if c.commit(epoch, anonymousSession()) {
			c.clearRecord(ctx)
		}
		return c.CurrentSession(), domain.ErrProfileNotFound
	case err != nil:
		c.log.Error().Err(err).Str("email", id.Email).Msg("profile lookup failed")
		c.commit(epoch, anonymousSession())
		return c.CurrentSession(), err
	}

	sess := authenticatedSession(id, profile.Role)
	if c.commit(epoch, sess) {
		c.saveRecord(ctx, id, profile.Role)
	}
	return sess, nil
}

// SignOut revokes the identity remotely best-effort and clears local state
// unconditionally: the contract is best-effort remote, authoritative local.
// Idempotent when already Anonymous.
func (c *SessionController) SignOut(ctx context.Context) error {
	c.claimEpoch() // supersede any in-flight lookup

	if err := c.gateway.SignOut(ctx); err != nil {
		c.log.Warn().Err(err).Msg("remote sign-out failed, clearing local state anyway")
	}
	c.clearRecord(ctx)
	c.commit(0, anonymousSession())
	return nil
}

// pump drains identity events in arrival order. Each identity-present event
// claims a fresh epoch and resolves its profile on a separate goroutine so
// a slow lookup never delays later events.
func (c *SessionController) pump(ctx context.Context, events <-chan domain.IdentityEvent) {
	defer close(c.pumpDone)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.handleIdentity(ctx, ev)
		}
	}
}

func (c *SessionController) handleIdentity(ctx context.Context, ev domain.IdentityEvent) {
	if ev.Identity == nil {
		c.claimEpoch()
		c.clearRecord(ctx)
		c.commit(0, anonymousSession())
		return
	}

	id := *ev.Identity
	epoch := c.claimEpoch()
	c.commit(epoch, resolvingSession(id))
	go c.resolve(ctx, id, epoch)
}

// resolve performs the profile lookup for one identity event. A result
// whose epoch has been superseded is discarded without touching state.
func (c *SessionController) resolve(ctx context.Context, id domain.Identity, epoch uint64) {
	profile, err := c.profiles.GetByEmail(ctx, id.Email)

	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		c.log.Info().Str("email", id.Email).Msg("no profile document for authenticated identity")
		if c.commit(epoch, anonymousSession()) {
			c.clearRecord(ctx)
		}
	case err != nil:
		// Transient lookup failure: logged, no automatic retry.
		c.log.Error().Err(err).Str("email", id.Email).Msg("profile lookup failed")
		c.commit(epoch, anonymousSession())
	default:
		if c.commit(epoch, authenticatedSession(id, profile.Role)) {
			c.saveRecord(ctx, id, profile.Role)
		} else {
			c.log.Debug().Str("email", id.Email).Msg("discarding superseded profile lookup")
		}
	}
}

// commit applies a transition and broadcasts it. When epoch is non-zero the
// transition is applied only if that epoch is still current; commit reports
// whether the transition was applied. Enqueueing to subscribers happens
// under the same lock, so every subscriber observes transitions in the
// order they were applied.
func (c *SessionController) commit(epoch uint64, s domain.Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != 0 && epoch != c.epoch {
		return false
	}
	c.cur = s
	for _, sub := range c.subs {
		sub.enqueue(s)
	}
	return true
}

func (c *SessionController) claimEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	return c.epoch
}

func (c *SessionController) setLoading(v bool) {
	c.mu.Lock()
	s := c.cur
	s.Loading = v
	c.cur = s
	for _, sub := range c.subs {
		sub.enqueue(s)
	}
	c.mu.Unlock()
}

func (c *SessionController) saveRecord(ctx context.Context, id domain.Identity, role string) {
	rec := domain.PersistedSession{UID: id.UID, Email: id.Email, Role: role}
	if err := c.store.Save(ctx, rec); err != nil {
		c.log.Warn().Err(err).Str("email", id.Email).Msg("failed to persist session record")
	}
}

func (c *SessionController) clearRecord(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.log.Warn().Err(err).Msg("failed to clear session record")
	}
}

func anonymousSession() domain.Session {
	return domain.Session{State: domain.StateAnonymous}
}

func resolvingSession(id domain.Identity) domain.Session {
	return domain.Session{State: domain.StateResolving, UID: id.UID, Email: id.Email, Loading: true}
}

func authenticatedSession(id domain.Identity, role string) domain.Session {
	return domain.Session{State: domain.StateAuthenticated, UID: id.UID, Email: id.Email, Role: role}
}

// subscriber decouples transition delivery from the controller lock: commit
// appends to an unbounded queue without blocking, and a dedicated flusher
// goroutine drains the queue into the channel preserving order.
type subscriber struct {
	ch   chan domain.Session
	mu   sync.Mutex
	q    []domain.Session
	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func newSubscriber() *subscriber {
	s := &subscriber{
		ch:   make(chan domain.Session),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go s.flush()
	return s
}

func (s *subscriber) enqueue(sess domain.Session) {
	s.mu.Lock()
	s.q = append(s.q, sess)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *subscriber) flush() {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}
		for {
			s.mu.Lock()
			if len(s.q) == 0 {
				s.mu.Unlock()
				break
			}
			next := s.q[0]
			s.q = s.q[1:]
			s.mu.Unlock()

			select {
			case s.ch <- next:
			case <-s.done:
				return
			}
		}
	}
}
