package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/lumispa/booking-system/internal/core/domain"
)

type flakyDirectory struct {
	err   error
	calls int
}

func (d *flakyDirectory) GetByEmail(context.Context, string) (*domain.Profile, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return nil, domain.ErrProfileNotFound
}

func (d *flakyDirectory) Put(context.Context, *domain.Profile) error {
	d.calls++
	return d.err
}

func TestBreakerDirectory_NotFoundDoesNotTrip(t *testing.T) {
	inner := &flakyDirectory{}
	d := WrapProfileDirectory(inner)

	for i := 0; i < 20; i++ {
		if _, err := d.GetByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, domain.ErrProfileNotFound) {
			t.Fatalf("call %d: expected ErrProfileNotFound, got %v", i, err)
		}
	}
	if inner.calls != 20 {
		t.Fatalf("breaker tripped on not-found: %d calls reached the store", inner.calls)
	}
}

func TestBreakerDirectory_TripsOnRepeatedFailure(t *testing.T) {
	inner := &flakyDirectory{err: errors.New("store down")}
	d := WrapProfileDirectory(inner)

	var sawOpen bool
	for i := 0; i < 20; i++ {
		_, err := d.GetByEmail(context.Background(), "a@example.com")
		if err == nil {
			t.Fatalf("expected failure")
		}
		if errors.Is(err, ErrDirectoryUnavailable) {
			sawOpen = true
		}
	}
	if !sawOpen {
		t.Fatalf("breaker never opened after repeated failures")
	}
	if inner.calls >= 20 {
		t.Fatalf("open breaker still forwarded every call")
	}
}
