package ports

import (
	"context"

	"github.com/lumispa/booking-system/internal/core/domain"
)

// CatalogRepository is the service-collection side of the document store.
// Snapshot ordering is store-defined; consumers must not assume stability
// across snapshots.
type CatalogRepository interface {
	// Add inserts a new service document and returns the store-assigned id.
	// The store assigns CreatedAt.
	Add(ctx context.Context, svc *domain.Service) (string, error)

	// Update replaces the mutable field set of an existing document and sets
	// UpdatedAt. CreatedAt and CreatedBy are never touched. Returns
	// domain.ErrServiceNotFound for an unknown id.
	Update(ctx context.Context, id string, svc *domain.Service) error

	// List returns the current full result set.
	List(ctx context.Context) ([]domain.Service, error)

	// Subscribe returns a live-query stream of full snapshots, pushed on
	// every underlying change and delivered in emission order, plus an
	// unsubscribe function the owner must call exactly once.
	Subscribe(ctx context.Context) (<-chan []domain.Service, func(), error)
}
