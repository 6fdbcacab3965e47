package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lumispa/booking-system/internal/core/domain"
)

const collectionServices = "services"

// CatalogRepository stores service documents and exposes the live query the
// catalog view subscribes to: a change stream on the collection triggers a
// full re-list, pushed as an ordered snapshot.
type CatalogRepository struct {
	col *mongo.Collection
	log zerolog.Logger
}

func NewCatalogRepository(db *mongo.Database, log zerolog.Logger) *CatalogRepository {
	return &CatalogRepository{col: db.Collection(collectionServices), log: log}
}

type serviceDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Price       int64              `bson:"price"`
	Description string             `bson:"description,omitempty"`
	Category    string             `bson:"category,omitempty"`
	ImageURL    string             `bson:"image_url,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at,omitempty"`
	CreatedBy   domain.CreatedBy   `bson:"created_by"`
}

func (d serviceDoc) toDomain() domain.Service {
	return domain.Service{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Price:       d.Price,
		Description: d.Description,
		Category:    d.Category,
		ImageURL:    d.ImageURL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		CreatedBy:   d.CreatedBy,
	}
}

// Add inserts a new service document. The store assigns both the id and
// created_at; created_by is taken from the given entity and never changes
// afterwards.
func (r *CatalogRepository) Add(ctx context.Context, svc *domain.Service) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := serviceDoc{
		Name:        svc.Name,
		Price:       svc.Price,
		Description: svc.Description,
		Category:    svc.Category,
		ImageURL:    svc.ImageURL,
		CreatedAt:   time.Now().UTC(),
		CreatedBy:   svc.CreatedBy,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert service: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert service: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// Update replaces the mutable field set and stamps updated_at. created_at
// and created_by are deliberately absent from the $set.
func (r *CatalogRepository) Update(ctx context.Context, id string, svc *domain.Service) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrServiceNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":        svc.Name,
		"price":       svc.Price,
		"description": svc.Description,
		"category":    svc.Category,
		"image_url":   svc.ImageURL,
		"updated_at":  time.Now().UTC(),
	}}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrServiceNotFound
	}
	return nil
}

// List returns the full result set in the store's natural order.
func (r *CatalogRepository) List(ctx context.Context) ([]domain.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.Service
	for cur.Next(ctx) {
		var doc serviceDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode service: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return out, nil
}

// Subscribe opens a change stream on the collection and pushes a full
// snapshot on every change, starting with the current state. Snapshots are
// produced by a single goroutine, so emission order matches change order;
// the channel closes when the subscription ends.
func (r *CatalogRepository) Subscribe(ctx context.Context) (<-chan []domain.Service, func(), error) {
	stream, err := r.col.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, nil, fmt.Errorf("watch services: %w", err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	ch := make(chan []domain.Service, 1)

	go func() {
		defer close(ch)
		defer stream.Close(context.Background())

		if !r.push(watchCtx, ch) {
			return
		}
		for stream.Next(watchCtx) {
			if !r.push(watchCtx, ch) {
				return
			}
		}
		if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
			r.log.Error().Err(err).Msg("service change stream terminated")
		}
	}()

	return ch, cancel, nil
}

// push re-lists the collection and emits the snapshot. Returns false when
// the subscription context is gone.
func (r *CatalogRepository) push(ctx context.Context, ch chan<- []domain.Service) bool {
	snap, err := r.List(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return false
		}
		r.log.Warn().Err(err).Msg("snapshot re-list failed, keeping previous snapshot")
		return true
	}

	select {
	case ch <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}

// EnsureIndexes creates the listing indexes.
func (r *CatalogRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
