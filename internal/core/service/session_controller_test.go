package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumispa/booking-system/internal/core/domain"
)

// stubGateway feeds identity events from a test-controlled channel and
// records sign-in/sign-out calls. It does not emit events on its own, so
// tests control event timing exactly.
type stubGateway struct {
	mu       sync.Mutex
	accounts map[string]stubAccount // email -> account
	events   chan domain.IdentityEvent
	signOuts int
}

type stubAccount struct {
	uid      string
	password string
}

func newStubGateway() *stubGateway {
	return &stubGateway{
		accounts: make(map[string]stubAccount),
		events:   make(chan domain.IdentityEvent, 16),
	}
}

func (g *stubGateway) SignInWithPassword(_ context.Context, email, password string) (domain.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	acct, ok := g.accounts[email]
	if !ok {
		return domain.Identity{}, domain.ErrAccountNotFound
	}
	if acct.password != password {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}
	return domain.Identity{UID: acct.uid, Email: email}, nil
}

func (g *stubGateway) CreateAccount(_ context.Context, email, password string) (domain.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.accounts[email]; ok {
		return domain.Identity{}, domain.ErrEmailInUse
	}
	g.accounts[email] = stubAccount{uid: "uid-" + email, password: password}
	return domain.Identity{UID: "uid-" + email, Email: email}, nil
}

func (g *stubGateway) SignOut(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.signOuts++
	return nil
}

func (g *stubGateway) Subscribe(_ context.Context) (<-chan domain.IdentityEvent, func(), error) {
	return g.events, func() { close(g.events) }, nil
}

// stubDirectory optionally gates lookups per email so tests can decide
// completion order.
type stubDirectory struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
	gates    map[string]chan struct{} // lookup blocks until gate closes
	started  chan string              // receives email when a lookup begins
	err      error
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		profiles: make(map[string]*domain.Profile),
		gates:    make(map[string]chan struct{}),
	}
}

func (d *stubDirectory) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	d.mu.Lock()
	gate := d.gates[email]
	started := d.started
	err := d.err
	d.mu.Unlock()

	if started != nil {
		started <- email
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.profiles[email]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (d *stubDirectory) Put(_ context.Context, profile *domain.Profile) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	clone := *profile
	d.profiles[profile.Email] = &clone
	return nil
}

type stubStore struct {
	mu     sync.Mutex
	rec    *domain.PersistedSession
	clears int
}

func (s *stubStore) Load(_ context.Context) (*domain.PersistedSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return nil, nil
	}
	clone := *s.rec
	return &clone, nil
}

func (s *stubStore) Save(_ context.Context, rec domain.PersistedSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = &rec
	return nil
}

func (s *stubStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = nil
	s.clears++
	return nil
}

func (s *stubStore) record() *domain.PersistedSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return nil
	}
	clone := *s.rec
	return &clone
}

func newTestController(t *testing.T, gw *stubGateway, dir *stubDirectory, store *stubStore) *SessionController {
	t.Helper()
	c := NewSessionController(gw, dir, store, zerolog.Nop())
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

// awaitState reads transitions until the predicate matches or times out.
func awaitState(t *testing.T, ch <-chan domain.Session, match func(domain.Session) bool) domain.Session {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-ch:
			if match(s) {
				return s
			}
		case <-deadline:
			t.Fatalf("timed out waiting for session state")
		}
	}
}

func TestSessionController_SignIn_ResolvesRole(t *testing.T) {
	gw := newStubGateway()
	dir := newStubDirectory()
	store := &stubStore{}

	_, _ = gw.CreateAccount(context.Background(), "alice@example.com", "secret1")
	_ = dir.Put(context.Background(), &domain.Profile{Email: "alice@example.com", FullName: "Alice", Role: domain.RoleAdmin})

	c := newTestController(t, gw, dir, store)

	sess, err := c.SignIn(context.Background(), "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if sess.State != domain.StateAuthenticated || sess.Role != domain.RoleAdmin {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if sess.UID == "" || sess.Email != "alice@example.com" {
		t.Fatalf("partial session: %+v", sess)
	}

	rec := store.record()
	if rec == nil {
		t.Fatalf("expected persisted session record")
	}
	if rec.UID != sess.UID || rec.Email != sess.Email || rec.Role != domain.RoleAdmin {
		t.Fatalf("record does not mirror session: %+v", rec)
	}
}

func TestSessionController_SignIn_UnknownAccount(t *testing.T) {
	gw := newStubGateway()
	dir := newStubDirectory()
	store := &stubStore{}
	c := newTestController(t, gw, dir, store)

	sess, err := c.SignIn(context.Background(), "ghost@example.com", "whatever")
	if err == nil {
		t.Fatalf("expected error for unknown account")
	}
	if msg := domain.CredentialMessage(err); msg == "" {
		t.Fatalf("expected a user-facing message")
	}
	if sess.State != domain.StateAnonymous {
		t.Fatalf("expected Anonymous, got %s", sess.State)
	}
	if sess.Loading {
		t.Fatalf("loading flag not cleared")
	}
	if store.record() != nil {
		t.Fatalf("no record may be written on failed sign-in")
	}
}

func TestSessionController_SignIn_ProfileMissing(t *testing.T) {
	gw := newStubGateway()
	dir := newStubDirectory()
	store := &stubStore{}

	_, _ = gw.CreateAccount(context.Background(), "orphan@example.com", "secret1")

	c := newTestController(t, gw, dir, store)

	sess, err := c.SignIn(context.Background(), "orphan@example.com", "secret1")
	if err != domain.ErrProfileNotFound {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if sess.State != domain.StateAnonymous {
		t.Fatalf("expected Anonymous for unregistered identity, got %s", sess.State)
	}
	if store.record() != nil {
		t.Fatalf("durable record must be cleared when no profile exists")
	}
}

func TestSessionController_SignOut_Idempotent(t *testing.T) {
	gw := newStubGateway()
	dir := newStubDirectory()
	store := &stubStore{}
	c := newTestController(t, gw, dir, store)

	if err := c.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if err := c.SignOut(context.Background()); err != nil {
		t.Fatalf("second SignOut: %v", err)
	}
	if got := c.CurrentSession().State; got != domain.StateAnonymous {
		t.Fatalf("expected Anonymous, got %s", got)
	}
	if store.record() != nil {
		t.Fatalf("record must stay cleared")
	}
}

func TestSessionController_StaleLookupDiscarded(t *testing.T) {
	gw := newStubGateway()
	dir := newStubDirectory()
	store := &stubStore{}

	_ = dir.Put(context.Background(), &domain.Profile{Email: "a@example.com", Role: domain.RoleAdmin})
	_ = dir.Put(context.Background(), &domain.Profile{Email: "b@example.com", Role: domain.RoleCustomer})

	gateA := make(chan struct{})
	started := make(chan string, 4)
	dir.mu.Lock()
	dir.gates["a@example.com"] = gateA
	dir.started = started
	dir.mu.Unlock()

	c := newTestController(t, gw, dir, store)
	transitions, cancel := c.Subscribe()
	defer cancel()

	// E1: user A signs in; its lookup blocks on gateA.
	gw.events <- domain.IdentityEvent{Identity: &domain.Identity{UID: "uid-a", Email: "a@example.com"}}
	if got := <-started; got != "a@example.com" {
		t.Fatalf("expected lookup for a, got %s", got)
	}

	// E2: user B signs in before E1's lookup resolves.
	gw.events <- domain.IdentityEvent{Identity: &domain.Identity{UID: "uid-b", Email: "b@example.com"}}
	if got := <-started; got != "b@example.com" {
		t.Fatalf("expected lookup for b, got %s", got)
	}

	// B resolves first and wins.
	final := awaitState(t, transitions, func(s domain.Session) bool {
		return s.State == domain.StateAuthenticated
	})
	if final.Email != "b@example.com" || final.Role != domain.RoleCustomer {
		t.Fatalf("expected user B session, got %+v", final)
	}

	// A's lookup completes late; its result must be discarded.
	close(gateA)
	time.Sleep(50 * time.Millisecond)

	cur := c.CurrentSession()
	if cur.Email != "b@example.com" || cur.Role != domain.RoleCustomer {
		t.Fatalf("stale lookup overwrote session: %+v", cur)
	}
	if rec := store.record(); rec == nil || rec.Email != "b@example.com" {
		t.Fatalf("record must reflect user B: %+v", rec)
	}
}

func TestSessionController_SignIn_StaleOrphanKeepsNewerRecord(t *testing.T) {
	gw := newStubGateway()
	dir := newStubDirectory()
	store := &stubStore{}

	_, _ = gw.CreateAccount(context.Background(), "orphan@example.com", "secret1")
	_ = dir.Put(context.Background(), &domain.Profile{Email: "b@example.com", Role: domain.RoleCustomer})

	gateOrphan := make(chan struct{})
	started := make(chan string, 4)
	dir.mu.Lock()
	dir.gates["orphan@example.com"] = gateOrphan
	dir.started = started
	dir.mu.Unlock()

	c := newTestController(t, gw, dir, store)
	transitions, cancel := c.Subscribe()
	defer cancel()

	// Interactive sign-in for an account with no profile document; its
	// lookup blocks on the gate.
	signInDone := make(chan error, 1)
	go func() {
		_, err := c.SignIn(context.Background(), "orphan@example.com", "secret1")
		signInDone <- err
	}()
	if got := <-started; got != "orphan@example.com" {
		t.Fatalf("expected lookup for orphan, got %s", got)
	}

	// A newer identity event authenticates user B and persists its record.
	gw.events <- domain.IdentityEvent{Identity: &domain.Identity{UID: "uid-b", Email: "b@example.com"}}
	if got := <-started; got != "b@example.com" {
		t.Fatalf("expected lookup for b, got %s", got)
	}
	awaitState(t, transitions, func(s domain.Session) bool {
		return s.State == domain.StateAuthenticated && s.Email == "b@example.com"
	})

	// The stale sign-in completes late: profile-not-found, but superseded.
	// It must neither touch the in-memory session nor clear B's record.
	close(gateOrphan)
	if err := <-signInDone; !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}

	cur := c.CurrentSession()
	if cur.State != domain.StateAuthenticated || cur.Email != "b@example.com" {
		t.Fatalf("stale sign-in overwrote session: %+v", cur)
	}
	if rec := store.record(); rec == nil || rec.Email != "b@example.com" {
		t.Fatalf("stale sign-in cleared the newer record: %+v", rec)
	}
}

func TestSessionController_TransitionsDeliveredInOrder(t *testing.T) {
	gw := newStubGateway()
	dir := newStubDirectory()
	store := &stubStore{}

	_, _ = gw.CreateAccount(context.Background(), "carol@example.com", "secret1")
	_ = dir.Put(context.Background(), &domain.Profile{Email: "carol@example.com", Role: domain.RoleCustomer})

	c := newTestController(t, gw, dir, store)
	transitions, cancel := c.Subscribe()
	defer cancel()

	if _, err := c.SignIn(context.Background(), "carol@example.com", "secret1"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	// Collect until Authenticated shows up; Resolving must precede it and
	// nothing may appear after it out of order.
	var states []domain.SessionState
	for {
		s := awaitState(t, transitions, func(domain.Session) bool { return true })
		states = append(states, s.State)
		if s.State == domain.StateAuthenticated {
			break
		}
	}

	sawResolving := false
	for _, st := range states {
		if st == domain.StateResolving {
			sawResolving = true
		}
		if st == domain.StateAuthenticated && !sawResolving {
			t.Fatalf("Authenticated observed before Resolving: %v", states)
		}
	}
}

func TestSessionController_StartRestoresPersistedRecord(t *testing.T) {
	gw := newStubGateway()
	dir := newStubDirectory()
	store := &stubStore{}
	_ = store.Save(context.Background(), domain.PersistedSession{UID: "uid-1", Email: "alice@example.com", Role: domain.RoleAdmin})

	c := newTestController(t, gw, dir, store)

	sess := c.CurrentSession()
	if sess.State != domain.StateResolving {
		t.Fatalf("expected Resolving on restored record, got %s", sess.State)
	}
	if sess.UID != "uid-1" || sess.Email != "alice@example.com" || sess.Role != domain.RoleAdmin {
		t.Fatalf("restored fields missing from snapshot: %+v", sess)
	}
	if SelectRoute(sess) != RouteLoading {
		t.Fatalf("restored record must still route to the loading placeholder")
	}
}

func TestSessionController_IdentityAbsentClearsSession(t *testing.T) {
	gw := newStubGateway()
	dir := newStubDirectory()
	store := &stubStore{}
	_ = store.Save(context.Background(), domain.PersistedSession{UID: "uid-1", Email: "alice@example.com", Role: domain.RoleAdmin})

	c := newTestController(t, gw, dir, store)
	transitions, cancel := c.Subscribe()
	defer cancel()

	gw.events <- domain.IdentityEvent{}

	awaitState(t, transitions, func(s domain.Session) bool {
		return s.State == domain.StateAnonymous
	})
	if store.record() != nil {
		t.Fatalf("record must be cleared on identity-absent")
	}
}

func TestSessionController_TransientLookupFailure(t *testing.T) {
	gw := newStubGateway()
	dir := newStubDirectory()
	store := &stubStore{}
	dir.err = context.DeadlineExceeded

	c := newTestController(t, gw, dir, store)
	transitions, cancel := c.Subscribe()
	defer cancel()

	gw.events <- domain.IdentityEvent{Identity: &domain.Identity{UID: "uid-x", Email: "x@example.com"}}

	// Error path lands in Anonymous; no retry loop exists, so the state is
	// stable afterwards.
	awaitState(t, transitions, func(s domain.Session) bool {
		return s.State == domain.StateAnonymous
	})
}
