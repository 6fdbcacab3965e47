package handler

import (
	"github.com/lumispa/booking-system/internal/core/domain"
	"github.com/lumispa/booking-system/internal/core/service"
)

// --- Request / Response types ---

type registerRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=6"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Session domain.Session `json:"session"`
	Route   service.Route  `json:"route"`
	Token   string         `json:"token,omitempty"`
}

type profileResponse struct {
	Profile *domain.Profile `json:"profile"`
}

type serviceRequest struct {
	Name        string `json:"name"        validate:"required"`
	Price       int64  `json:"price"       validate:"required,gt=0"`
	Description string `json:"description"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url"   validate:"omitempty,url"`
}

type createServiceResponse struct {
	ID string `json:"id"`
}

type catalogResponse struct {
	Services []domain.Service `json:"services"`
	Loading  bool             `json:"loading"`
}
