package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lumispa/booking-system/internal/core/domain"
	"github.com/lumispa/booking-system/internal/core/ports"
)

// CatalogView holds the live materialization of the service collection. It
// owns exactly one repository subscription, applies snapshots in emission
// order, and exposes the current one to the presentation layer.
//
// Writes are fire-and-forget for the local state: Create and Update never
// mutate the snapshot; the live query pushes the resulting change back.
type CatalogView struct {
	repo ports.CatalogRepository
	log  zerolog.Logger

	mu       sync.Mutex
	snapshot []domain.Service
	loading  bool

	unsubscribe func()
	done        chan struct{}
	closeOnce   sync.Once
}

// NewCatalogView subscribes to the catalog's live query and starts applying
// snapshots. The owner must call Close exactly once when done, or the live
// connection leaks for the process lifetime.
func NewCatalogView(ctx context.Context, repo ports.CatalogRepository, log zerolog.Logger) (*CatalogView, error) {
	snaps, unsub, err := repo.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	v := &CatalogView{
		repo:        repo,
		log:         log,
		loading:     true,
		unsubscribe: unsub,
		done:        make(chan struct{}),
	}
	go v.consume(snaps)
	return v, nil
}

// Close releases the live subscription. Idempotent.
func (v *CatalogView) Close() {
	v.closeOnce.Do(func() {
		v.unsubscribe()
		close(v.done)
	})
}

// Snapshot returns a copy of the most recently applied snapshot, possibly
// empty.
func (v *CatalogView) Snapshot() []domain.Service {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]domain.Service, len(v.snapshot))
	copy(out, v.snapshot)
	return out
}

// Loading is true only until the first snapshot has arrived.
func (v *CatalogView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Create validates and writes a new service document. The creator snapshot
// on svc.CreatedBy is captured by the caller at creation time.
func (v *CatalogView) Create(ctx context.Context, svc domain.Service) (string, error) {
	if err := svc.Validate(); err != nil {
		return "", err
	}

	id, err := v.repo.Add(ctx, &svc)
	if err != nil {
		v.log.Error().Err(err).Str("name", svc.Name).Msg("failed to create service")
		return "", err
	}
	v.log.Info().Str("service_id", id).Str("name", svc.Name).Int64("price", svc.Price).Msg("service created")
	return id, nil
}

// Update validates and writes the full mutated field set of an existing
// document. Partial-field diffing is not performed.
func (v *CatalogView) Update(ctx context.Context, id string, svc domain.Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}

	if err := v.repo.Update(ctx, id, &svc); err != nil {
		v.log.Error().Err(err).Str("service_id", id).Msg("failed to update service")
		return err
	}
	v.log.Info().Str("service_id", id).Msg("service updated")
	return nil
}

// consume applies snapshots strictly in arrival order. Intermediate
// snapshots may have been coalesced by the transport; none are reordered
// here.
func (v *CatalogView) consume(snaps <-chan []domain.Service) {
	for {
		select {
		case <-v.done:
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			v.mu.Lock()
			v.snapshot = snap
			v.loading = false
			v.mu.Unlock()
		}
	}
}
