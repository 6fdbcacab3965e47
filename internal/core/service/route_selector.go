package service

import "github.com/lumispa/booking-system/internal/core/domain"

// Route is an initial navigational destination for the presentation layer.
type Route string

const (
	// RouteLoading is the waiting placeholder shown while the session is
	// Unknown or Resolving. Callers display an indicator without navigating.
	RouteLoading  Route = "loading"
	RouteLogin    Route = "login"
	RouteAdmin    Route = "admin"
	RouteCustomer Route = "customer"
)

// SelectRoute picks the destination for a session snapshot. Pure and total:
// any authenticated role other than admin lands on the customer route.
// Callers re-invoke on every session transition and perform a one-shot
// redirect, never a permanent route lock.
func SelectRoute(s domain.Session) Route {
	switch s.State {
	case domain.StateAuthenticated:
		if s.Role == domain.RoleAdmin {
			return RouteAdmin
		}
		return RouteCustomer
	case domain.StateAnonymous:
		return RouteLogin
	default:
		return RouteLoading
	}
}
