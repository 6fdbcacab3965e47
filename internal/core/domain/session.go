package domain

import "errors"

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// SessionState represents the resolution state of the current session.
type SessionState string

const (
	// StateUnknown is the initial state: no cached or live data yet.
	StateUnknown SessionState = "unknown"
	// StateResolving means an identity is known but its profile lookup is in flight.
	StateResolving SessionState = "resolving"
	// StateAuthenticated means a profile was resolved and carries a role.
	StateAuthenticated SessionState = "authenticated"
	// StateAnonymous means nobody is signed in.
	StateAnonymous SessionState = "anonymous"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrAccountNotFound = errors.New("account not found")
var ErrInvalidEmail = errors.New("invalid email address")
var ErrEmailInUse = errors.New("email already in use")
var ErrWeakPassword = errors.New("password too weak")
var ErrProfileNotFound = errors.New("profile not found")
var ErrFullNameRequired = errors.New("full name is required")

// Identity is the opaque account reference issued by the auth gateway.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// IdentityEvent is a single identity-changed notification. A nil Identity
// means "signed out".
type IdentityEvent struct {
	Identity *Identity
}

// Session is the resolved view of who is signed in and with what role.
// All identity fields are set together or not at all; there is never a
// partial session. Role is always sourced from a profile document, never
// inferred locally.
type Session struct {
	State   SessionState `json:"state"`
	UID     string       `json:"uid,omitempty"`
	Email   string       `json:"email,omitempty"`
	Role    string       `json:"role,omitempty"`
	Loading bool         `json:"loading"`
}

// SignedIn reports whether the session carries a fully resolved identity.
func (s Session) SignedIn() bool {
	return s.State == StateAuthenticated
}

// PersistedSession is the durable mirror of an authenticated session.
// Loading flags are never durable, so it carries identity fields only.
type PersistedSession struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// CredentialMessage maps a sign-in failure to the user-facing message shown
// on the login screen. Unknown errors collapse to a generic credentials hint
// so nothing internal leaks.
func CredentialMessage(err error) string {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return "No account exists for this email."
	case errors.Is(err, ErrInvalidEmail):
		return "The email address is not valid."
	case errors.Is(err, ErrProfileNotFound):
		return "No user profile was found for this account."
	default:
		return "Wrong email or password."
	}
}
