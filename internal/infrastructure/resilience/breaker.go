package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/lumispa/booking-system/internal/core/domain"
	"github.com/lumispa/booking-system/internal/core/ports"
)

// ErrDirectoryUnavailable is returned while the breaker is open.
var ErrDirectoryUnavailable = errors.New("profile directory unavailable")

// BreakerDirectory wraps a ProfileDirectory with a circuit breaker. There
// is deliberately no retry loop: a transient lookup failure lands the
// session in Anonymous, and repeated failures trip the breaker so further
// lookups fail fast instead of hammering the store.
//
// A profile-not-found answer is a successful lookup, not a failure, and
// never counts toward tripping.
type BreakerDirectory struct {
	inner ports.ProfileDirectory
	cb    *gobreaker.CircuitBreaker
}

type lookupResult struct {
	profile *domain.Profile
	err     error
}

func WrapProfileDirectory(inner ports.ProfileDirectory) *BreakerDirectory {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "profile-directory",
		MaxRequests: 3,                // half-open: allow 3 probes
		Interval:    30 * time.Second, // closed: reset counters every 30s
		Timeout:     10 * time.Second, // open -> half-open after 10s
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})
	return &BreakerDirectory{inner: inner, cb: cb}
}

func (d *BreakerDirectory) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	v, err := d.cb.Execute(func() (any, error) {
		p, err := d.inner.GetByEmail(ctx, email)
		if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
			return nil, err
		}
		return lookupResult{profile: p, err: err}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
		}
		return nil, err
	}

	res := v.(lookupResult)
	return res.profile, res.err
}

func (d *BreakerDirectory) Put(ctx context.Context, profile *domain.Profile) error {
	_, err := d.cb.Execute(func() (any, error) {
		return nil, d.inner.Put(ctx, profile)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	return err
}
