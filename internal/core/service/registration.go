package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lumispa/booking-system/internal/core/domain"
	"github.com/lumispa/booking-system/internal/core/ports"
)

const minPasswordLength = 6

// Registrar creates gateway accounts together with their profile documents.
type Registrar struct {
	gateway  ports.AuthGateway
	profiles ports.ProfileDirectory
	log      zerolog.Logger
}

func NewRegistrar(gateway ports.AuthGateway, profiles ports.ProfileDirectory, log zerolog.Logger) *Registrar {
	return &Registrar{gateway: gateway, profiles: profiles, log: log}
}

// Register creates a customer account: credentials at the gateway, then the
// profile document keyed by email with role "customer". The role is fixed
// here; self-registration never produces an admin.
func (r *Registrar) Register(ctx context.Context, in ports.RegistrationInput) (*domain.Profile, error) {
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	id, err := r.gateway.CreateAccount(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		FullName: strings.TrimSpace(in.FullName),
		Email:    id.Email,
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),
		Role:     domain.RoleCustomer,
	}
	if err := r.profiles.Put(ctx, profile); err != nil {
		r.log.Error().Err(err).Str("email", id.Email).Msg("account created but profile write failed")
		return nil, err
	}

	r.log.Info().Str("email", id.Email).Str("uid", id.UID).Msg("account registered")
	return profile, nil
}

// EnsureAdmin bootstraps the configured admin account at startup when no
// profile exists for it yet. An existing gateway account without a profile
// is tolerated: only the missing piece is created.
func (r *Registrar) EnsureAdmin(ctx context.Context, in ports.RegistrationInput) error {
	_, err := r.profiles.GetByEmail(ctx, in.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return err
	}

	if _, err := r.gateway.CreateAccount(ctx, in.Email, in.Password); err != nil && !errors.Is(err, domain.ErrEmailInUse) {
		return err
	}

	profile := &domain.Profile{
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),
		Role:     domain.RoleAdmin,
	}
	if err := r.profiles.Put(ctx, profile); err != nil {
		return err
	}

	r.log.Info().Str("email", profile.Email).Msg("admin account ensured")
	return nil
}

func validateRegistration(in ports.RegistrationInput) error {
	if strings.TrimSpace(in.FullName) == "" {
		return domain.ErrFullNameRequired
	}
	if !strings.Contains(in.Email, "@") {
		return domain.ErrInvalidEmail
	}
	if len(in.Password) < minPasswordLength {
		return domain.ErrWeakPassword
	}
	return nil
}
