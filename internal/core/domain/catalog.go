package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrServiceNotFound = errors.New("service not found")
var ErrServiceNameRequired = errors.New("service name is required")
var ErrInvalidPrice = errors.New("service price must be greater than zero")

// CreatedBy is the creator snapshot captured when a service document is
// first written. It is immutable for the document lifetime.
type CreatedBy struct {
	UID   string `json:"uid" bson:"uid"`
	Email string `json:"email" bson:"email"`
}

// Service is a bookable offering in the catalog. Price is an integer in the
// smallest currency unit; display formatting is not this core's concern.
// CreatedAt and UpdatedAt are assigned by the store.
type Service struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name"`
	Price       int64     `json:"price" bson:"price"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Category    string    `json:"category,omitempty" bson:"category,omitempty"`
	ImageURL    string    `json:"image_url,omitempty" bson:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	CreatedBy   CreatedBy `json:"created_by" bson:"created_by"`
}

// Validate checks the write invariants: a service is never created or
// updated with an empty name or a non-positive price.
func (s *Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrServiceNameRequired
	}
	if s.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}
